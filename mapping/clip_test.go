package mapping

import (
	"testing"

	"github.com/grailbio/bsmap/encoding/fastq"
	"github.com/grailbio/testutil/expect"
)

const testAdapter = "AGATCGGAAGAGC"

func TestClipAdapterExact(t *testing.T) {
	var stats Stats
	r := &fastq.Read{Seq: "ACGTACGT" + testAdapter[:10], Qual: "IIIIIIIIIIIIIIIIII"}
	clipAdapter(r, testAdapter, &stats)
	expect.EQ(t, r.Seq, "ACGTACGT")
	expect.EQ(t, r.Qual, "IIIIIIII")
	expect.EQ(t, stats.Clipped, 1)
}

func TestClipAdapterTolerance(t *testing.T) {
	// One mismatch in thirteen bases is within the 90% identity bound.
	var stats Stats
	mutated := "AGGTCGGAAGAGC"
	r := &fastq.Read{Seq: "ACGTACGT" + mutated, Qual: "IIIIIIIIIIIIIIIIIIIII"}
	clipAdapter(r, testAdapter, &stats)
	expect.EQ(t, r.Seq, "ACGTACGT")

	// Two mismatches in thirteen are not.
	stats = Stats{}
	mutated = "AGGTCGGATGAGC"
	r = &fastq.Read{Seq: "ACGTACGT" + mutated, Qual: "IIIIIIIIIIIIIIIIIIIII"}
	clipAdapter(r, testAdapter, &stats)
	expect.EQ(t, r.Seq, "ACGTACGT"+mutated)
	expect.EQ(t, stats.Clipped, 0)
}

func TestClipAdapterShortOverhang(t *testing.T) {
	// An adapter overhang shorter than the minimum overlap is left in place.
	var stats Stats
	r := &fastq.Read{Seq: "ACGTACGT" + testAdapter[:5], Qual: "IIIIIIIIIIIII"}
	clipAdapter(r, testAdapter, &stats)
	expect.EQ(t, r.Seq, "ACGTACGT"+testAdapter[:5])
	expect.EQ(t, stats.Clipped, 0)
}

func TestClipAdapterNoMatch(t *testing.T) {
	var stats Stats
	r := &fastq.Read{Seq: "ACGTACGTACGTACGT", Qual: "IIIIIIIIIIIIIIII"}
	clipAdapter(r, testAdapter, &stats)
	expect.EQ(t, r.Seq, "ACGTACGTACGTACGT")
}
