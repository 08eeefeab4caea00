package mapping

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

// pairedRef has mate-1 territory at offset 0 ("AAACCG") and mate-2 territory
// at offset 20 ("CCGTCC"); the surrounding filler matches neither mate on
// either image.
const pairedRefSeq = "AAACCG" + "TTGGAA" + "GGTTAA" + "TT" + "CCGTCC" + "GATC"

const (
	pairedMate1 = "AAACCG"
	pairedMate2 = "GGACGG" // reverse complement of CCGTCC
)

func pairedOpts() Opts {
	opts := DefaultOpts
	opts.MaxMismatches = 0
	opts.TopK = 10
	opts.FragRange = 30
	return opts
}

func TestMapPairUnique(t *testing.T) {
	ref := testRef(t, testScheme, pairedRefSeq)
	var stats Stats
	pm := MapPair(ref, pairedMate1, pairedMate2, pairedOpts(), &stats)
	expect.EQ(t, pm.Class(), Unique)
	expect.EQ(t, pm.Times, 1)
	expect.EQ(t, pm.Mate1.ChromPos, uint32(0))
	expect.EQ(t, pm.Mate1.Strand, byte('+'))
	expect.EQ(t, pm.Mate2.ChromPos, uint32(20))
	expect.EQ(t, pm.Mate2.Strand, byte('-'))
	expect.EQ(t, fragmentLength(pm.Mate1, len(pairedMate1), pm.Mate2, len(pairedMate2)), 26)
}

func TestMapPairFragmentRange(t *testing.T) {
	ref := testRef(t, testScheme, pairedRefSeq)
	var stats Stats

	// The fragment length is exactly 26: a bound of 26 accepts, 25 rejects.
	opts := pairedOpts()
	opts.FragRange = 26
	pm := MapPair(ref, pairedMate1, pairedMate2, opts, &stats)
	expect.EQ(t, pm.Class(), Unique)

	opts.FragRange = 25
	pm = MapPair(ref, pairedMate1, pairedMate2, opts, &stats)
	expect.EQ(t, pm.Class(), Unmapped)

	opts.FragRange = 10
	pm = MapPair(ref, pairedMate1, pairedMate2, opts, &stats)
	expect.EQ(t, pm.Class(), Unmapped)
	expect.EQ(t, pm.Times, 0)
}

// pairedRefSeq2 adds a second mate-2 site at offset 40, out of fragment range
// of the mate-1 site under the default test bound.
const pairedRefSeq2 = pairedRefSeq + "TTTTTTTTTT" + "CCGTCC" + "AA"

func TestMapPairResolvesAmbiguity(t *testing.T) {
	// Mate 2 alone is ambiguous (two sites), but only one combination
	// satisfies the fragment-length constraint.
	ref := testRef(t, testScheme, pairedRefSeq2)
	var stats Stats
	pm := MapPair(ref, pairedMate1, pairedMate2, pairedOpts(), &stats)
	expect.EQ(t, pm.Class(), Unique)
	expect.EQ(t, pm.Mate2.ChromPos, uint32(20))
}

func TestMapPairAmbiguous(t *testing.T) {
	// With a loose fragment bound both mate-2 sites pair at the same
	// mismatch sum.
	ref := testRef(t, testScheme, pairedRefSeq2)
	var stats Stats
	opts := pairedOpts()
	opts.FragRange = 60
	pm := MapPair(ref, pairedMate1, pairedMate2, opts, &stats)
	expect.EQ(t, pm.Class(), Ambiguous)
	expect.EQ(t, pm.Times, 2)
}

func TestMapPairMissingMate(t *testing.T) {
	ref := testRef(t, testScheme, pairedRefSeq)
	var stats Stats
	pm := MapPair(ref, pairedMate1, "GTGTGT", pairedOpts(), &stats)
	expect.EQ(t, pm.Class(), Unmapped)
}

func TestMapPairDifferentChromosomes(t *testing.T) {
	// Each mate maps uniquely, but to different chromosomes.
	ref := testRef(t, testScheme, pairedRefSeq[:18], pairedRefSeq[18:])
	var stats Stats
	pm := MapPair(ref, pairedMate1, pairedMate2, pairedOpts(), &stats)
	expect.EQ(t, pm.Class(), Unmapped)
}

func TestCandidateList(t *testing.T) {
	cl := &candidateList{k: 2}
	expect.EQ(t, cl.bound(6), 6)
	cl.add(Candidate{ChromID: 0, ChromPos: 10, Strand: '+', Mismatch: 2})
	cl.add(Candidate{ChromID: 0, ChromPos: 5, Strand: '+', Mismatch: 1})
	expect.EQ(t, cl.bound(6), 2)
	expect.EQ(t, cl.cands[0].ChromPos, uint32(5))
	expect.EQ(t, cl.cands[1].ChromPos, uint32(10))

	// Rediscovery of a retained candidate is a no-op.
	cl.add(Candidate{ChromID: 0, ChromPos: 10, Strand: '+', Mismatch: 2})
	expect.EQ(t, len(cl.cands), 2)
	expect.False(t, cl.truncated)

	// A better candidate evicts the worst; dropping the tie of the new worst
	// records a truncation.
	cl.add(Candidate{ChromID: 0, ChromPos: 7, Strand: '-', Mismatch: 1})
	expect.EQ(t, len(cl.cands), 2)
	expect.EQ(t, cl.cands[1].ChromPos, uint32(7))
	expect.False(t, cl.truncated)
	cl.add(Candidate{ChromID: 0, ChromPos: 9, Strand: '+', Mismatch: 1})
	expect.True(t, cl.truncated)
}

func TestMapPairTopKTruncation(t *testing.T) {
	// Three tied mate-1 sites with k=2: the dropped tie must be recorded.
	ref := testRef(t, testScheme, "TAACCGAGG"+"TAACCGAGG"+"TAACCGAGG"+"T")
	var stats Stats
	opts := pairedOpts()
	opts.TopK = 2
	MapPair(ref, "AACCGA", pairedMate2, opts, &stats)
	expect.EQ(t, stats.TruncatedLists, 1)
}

func TestFragmentLength(t *testing.T) {
	a := Candidate{ChromPos: 0}
	b := Candidate{ChromPos: 20}
	expect.EQ(t, fragmentLength(a, 6, b, 6), 26)
	expect.EQ(t, fragmentLength(b, 6, a, 6), 26)
	// Overlapping mates span the union of their extents.
	expect.EQ(t, fragmentLength(a, 6, Candidate{ChromPos: 3}, 6), 9)
	expect.EQ(t, fragmentLength(a, 6, a, 6), 6)
}
