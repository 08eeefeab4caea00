package mapping

import "fmt"

// SeedScheme describes the spaced-seed geometry baked into an index. A seed is
// a window of HashLen bases of the (converted) read. Positions[:HashWeight]
// are the window offsets sampled by the primary hash; the remaining offsets up
// to SeedLength are the discriminator positions, compared one at a time during
// the binary-search refinement of a bucket. Every position array entry is an
// offset within [0, HashLen).
type SeedScheme struct {
	// HashLen is the seed window length in bases. Reads shorter than HashLen
	// cannot be seeded and are reported unmapped.
	HashLen int
	// HashWeight is the number of window offsets covered by the primary hash.
	// The bucket table has 4^HashWeight entries.
	HashWeight int
	// SeedLength is the total number of window offsets compared during
	// seeding, primary-hash offsets included.
	SeedLength int
	// Positions is the fixed permutation of window offsets: the primary-hash
	// offsets first, then the discriminator offsets in comparison order.
	Positions []uint32
}

// DefaultScheme is the production seed geometry: a 26-base window whose odd
// base pairs feed the primary hash and whose even pairs are the binary-search
// discriminators.
var DefaultScheme = SeedScheme{
	HashLen:    26,
	HashWeight: 13,
	SeedLength: 26,
	Positions: []uint32{
		0, 1, 4, 5, 8, 9, 12, 13, 16, 17, 20, 21, 24,
		2, 3, 6, 7, 10, 11, 14, 15, 18, 19, 22, 23, 25,
	},
}

// NumBuckets returns the size of the bucket table implied by the scheme.
func (s SeedScheme) NumBuckets() int { return 1 << uint(2*s.HashWeight) }

// Validate checks the internal consistency of the scheme.
func (s SeedScheme) Validate() error {
	if s.HashLen < 1 {
		return fmt.Errorf("seed scheme: hash length %d < 1", s.HashLen)
	}
	if s.HashWeight < 1 || s.HashWeight > 15 {
		return fmt.Errorf("seed scheme: hash weight %d outside [1,15]", s.HashWeight)
	}
	if s.SeedLength < s.HashWeight || s.SeedLength > len(s.Positions) {
		return fmt.Errorf("seed scheme: seed length %d outside [%d,%d]",
			s.SeedLength, s.HashWeight, len(s.Positions))
	}
	seen := make(map[uint32]bool)
	for _, p := range s.Positions {
		if int(p) >= s.HashLen {
			return fmt.Errorf("seed scheme: position %d outside hash window of %d", p, s.HashLen)
		}
		if seen[p] {
			return fmt.Errorf("seed scheme: duplicate position %d", p)
		}
		seen[p] = true
	}
	return nil
}

// baseCode maps A, C, G, T to their 2-bit codes. Converted sequences contain
// no other letters.
var baseCode [256]uint8

func init() {
	baseCode['A'] = 0
	baseCode['C'] = 1
	baseCode['G'] = 2
	baseCode['T'] = 3
}

// hashSeed computes the primary hash of a seed window: the direct 2-bit
// base-pair encoding of the bases at the hash offsets.
//
// REQUIRES: len(seed) >= HashLen, seed is a converted sequence.
func (s SeedScheme) hashSeed(seed []byte) uint32 {
	var h uint32
	for _, p := range s.Positions[:s.HashWeight] {
		h = h<<2 | uint32(baseCode[seed[p]])
	}
	return h
}
