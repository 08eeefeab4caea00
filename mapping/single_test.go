package mapping

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func testOpts() Opts {
	opts := DefaultOpts
	opts.MaxMismatches = 0
	return opts
}

func TestMapReadUniqueForward(t *testing.T) {
	ref := testRef(t, testScheme, "AAACCGGTT")
	var stats Stats
	bm := MapRead(ref, "AACCGG", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.Times, 1)
	expect.EQ(t, bm.ChromID, uint16(0))
	expect.EQ(t, bm.ChromPos, uint32(1))
	expect.EQ(t, bm.Strand, byte('+'))
	expect.EQ(t, bm.Mismatch, 0)
}

func TestMapReadAmbiguous(t *testing.T) {
	// The read occurs at offsets 1 and 10 of the converted reference; its
	// reverse complement occurs nowhere.
	ref := testRef(t, testScheme, "TAACCGAGGTAACCGAGG")
	var stats Stats
	bm := MapRead(ref, "AACCGA", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Ambiguous)
	expect.EQ(t, bm.Times, 2)
	// The reported representative is one of the tied positions.
	expect.True(t, bm.ChromPos == 1 || bm.ChromPos == 10)
}

func TestMapReadBisulfiteTolerance(t *testing.T) {
	// A fully bisulfite-converted read (Cs read as Ts) matches the C→T image
	// with zero mismatches: the converted reference is AAATTGGTT.
	ref := testRef(t, testScheme, "AAACCGGTT")
	var stats Stats
	bm := MapRead(ref, "AATTGG", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.ChromPos, uint32(1))
	expect.EQ(t, bm.Mismatch, 0)
}

func TestMapReadReverseStrand(t *testing.T) {
	// The reverse complement of the read matches the reference at offset 3.
	ref := testRef(t, testScheme, "AAACCGGTTA")
	var stats Stats
	bm := MapRead(ref, "AACCAA", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.ChromPos, uint32(3))
	expect.EQ(t, bm.Strand, byte('-'))
}

func TestMapReadNBases(t *testing.T) {
	// Each N is read as T, so the three N positions contribute no mismatches
	// where the converted reference has a T.
	ref := testRef(t, testScheme, "AAACCGGTTA")
	var stats Stats
	bm := MapRead(ref, "NNGGNT", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.ChromPos, uint32(3))
	expect.EQ(t, bm.Mismatch, 0)
}

func TestMapReadShorterThanSeedWindow(t *testing.T) {
	ref := testRef(t, testScheme, "AAACCGGTT")
	var stats Stats
	bm := MapRead(ref, "AACCG", testOpts(), &stats)
	expect.EQ(t, bm.Times, 0)
	expect.EQ(t, bm.Class(0), Unmapped)
}

func TestMapReadMismatchBound(t *testing.T) {
	// The last read base mismatches the reference; the seed compares only the
	// first four window bases, so the candidate survives seeding.
	ref := testRef(t, testSchemeShortSeed, "AAACCGGTT")
	var stats Stats

	opts := testOpts()
	bm := MapRead(ref, "AACCGT", opts, &stats)
	expect.EQ(t, bm.Class(opts.MaxMismatches), Unmapped)

	opts.MaxMismatches = 1
	bm = MapRead(ref, "AACCGT", opts, &stats)
	expect.EQ(t, bm.Class(opts.MaxMismatches), Unique)
	expect.EQ(t, bm.ChromPos, uint32(1))
	expect.EQ(t, bm.Mismatch, 1)
}

func TestMapReadEndOfChromosome(t *testing.T) {
	// An alignment ending exactly at the chromosome end is rejected.
	ref := testRef(t, testScheme, "AAACCGGTG")
	var stats Stats
	bm := MapRead(ref, "CCGGTG", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unmapped)
}

func TestMapReadAGWildcard(t *testing.T) {
	// The read is G→A converted relative to the reference, so it maps only
	// against the G→A image.
	ref := testRef(t, testScheme, "TTTGGATTTT")
	var stats Stats

	opts := testOpts()
	bm := MapRead(ref, "TAAATT", opts, &stats)
	expect.EQ(t, bm.Class(0), Unmapped)

	opts.AGWildcard = true
	bm = MapRead(ref, "TAAATT", opts, &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.ChromPos, uint32(2))
	expect.EQ(t, bm.Strand, byte('+'))
}

func TestMapReadBucketOverflow(t *testing.T) {
	ref := testRef(t, testScheme, "AAACCGGTT")
	var stats Stats
	opts := testOpts()
	opts.MaxCandidates = 0
	bm := MapRead(ref, "AACCGG", opts, &stats)
	expect.EQ(t, bm.Class(0), Unmapped)
	expect.True(t, stats.OverflowSeeds > 0)
}

func TestBisulfiteEquivalence(t *testing.T) {
	// Swapping a reference C for T leaves the C→T image unchanged, so no
	// read's mismatch count may change.
	refC := testRef(t, testScheme, "AAACCGGTT")
	refT := testRef(t, testScheme, "AAATCGGTT")
	expect.EQ(t, string(refC.CtoT.Chroms[0].Seq), string(refT.CtoT.Chroms[0].Seq))
	for _, seq := range []string{"AACCGG", "AATTGG", "AACTGG", "GTGTGT"} {
		var stats Stats
		bmC := MapRead(refC, seq, testOpts(), &stats)
		bmT := MapRead(refT, seq, testOpts(), &stats)
		expect.EQ(t, bmC, bmT)
	}
}

func TestMapReadSecondChromosome(t *testing.T) {
	ref := testRef(t, testScheme, "TTTTTTTTTT", "TAACCGAGGT")
	var stats Stats
	bm := MapRead(ref, "AACCGA", testOpts(), &stats)
	expect.EQ(t, bm.Class(0), Unique)
	expect.EQ(t, bm.ChromID, uint16(1))
	expect.EQ(t, bm.ChromPos, uint32(1))
}
