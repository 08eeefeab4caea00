package mapping

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestBisulfiteConvert(t *testing.T) {
	expect.EQ(t, string(bisulfiteConvert("ACGTN", CtoT)), "ATGTT")
	expect.EQ(t, string(bisulfiteConvert("ACGTN", GtoA)), "ACATA")
	// Lowercase bases and non-N ambiguity codes are coerced before the
	// substitution.
	expect.EQ(t, string(bisulfiteConvert("acgtRY", CtoT)), "ATGTTT")
	expect.EQ(t, string(bisulfiteConvert("acgtRY", GtoA)), "ACATAA")
	expect.EQ(t, string(bisulfiteConvert("", CtoT)), "")
}

func TestReverseComplement(t *testing.T) {
	expect.EQ(t, reverseComplement("AACCGGTT"), "AACCGGTT")
	expect.EQ(t, reverseComplement("AAACCG"), "CGGTTT")
	expect.EQ(t, reverseComplement("ANT"), "ANT")
	expect.EQ(t, reverseComplement(""), "")
}
