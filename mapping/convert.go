package mapping

import (
	gunsafe "github.com/grailbio/base/unsafe"
)

// Conversion selects one of the two bisulfite base substitutions.
type Conversion uint8

const (
	// CtoT is the forward convention: every C is read as T. Reads from the
	// original top strand are compared against the C→T image.
	CtoT Conversion = iota
	// GtoA is the reverse convention: every G is read as A.
	GtoA
)

func (c Conversion) String() string {
	if c == CtoT {
		return "C->T"
	}
	return "G->A"
}

// Conversion tables. Lowercase bases are folded to uppercase, and any letter
// outside ACGT (N and the rarer IUPAC ambiguity codes alike) is coerced to N
// before the substitution, so a converted sequence contains only ACGT.
var (
	ctotTable       [256]byte
	gtoaTable       [256]byte
	complementTable [256]byte
)

func init() {
	var canonical [256]byte
	for i := range canonical {
		canonical[i] = 'N'
	}
	for _, b := range []byte("ACGT") {
		canonical[b] = b
		canonical[b+'a'-'A'] = b
	}
	for i, b := range canonical {
		switch b {
		case 'C', 'N':
			ctotTable[i] = 'T'
		default:
			ctotTable[i] = b
		}
		switch b {
		case 'G', 'N':
			gtoaTable[i] = 'A'
		default:
			gtoaTable[i] = b
		}
		complementTable[i] = 'N'
	}
	complementTable['A'], complementTable['a'] = 'T', 'T'
	complementTable['C'], complementTable['c'] = 'G', 'G'
	complementTable['G'], complementTable['g'] = 'C', 'C'
	complementTable['T'], complementTable['t'] = 'A', 'A'
}

// bisulfiteConvert rewrites seq per the given conversion. The result contains
// only the bytes ACGT; an N becomes T on the C→T image and A on the G→A image,
// so it can contribute at most one mismatch to any alignment and never creates
// a privileged match.
func bisulfiteConvert(seq string, conv Conversion) []byte {
	table := &ctotTable
	if conv == GtoA {
		table = &gtoaTable
	}
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		buf[i] = table[seq[i]]
	}
	return buf
}

// reverseComplement computes the reverse complement of the given DNA string.
// Bases outside ACGT complement to N.
func reverseComplement(seq string) string {
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		buf[i] = complementTable[seq[len(seq)-1-i]]
	}
	return gunsafe.BytesToString(buf)
}
