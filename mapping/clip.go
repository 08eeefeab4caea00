package mapping

import "github.com/grailbio/bsmap/encoding/fastq"

// minAdapterOverlap is the shortest adapter prefix that triggers clipping; a
// shorter overhang at the read end is left in place.
const minAdapterOverlap = 6

// clipAdapter truncates read at the earliest position where its suffix
// matches a prefix of the adapter at 90% or better identity. The quality
// string is truncated with the sequence.
func clipAdapter(read *fastq.Read, adapter string, stats *Stats) {
	seq := read.Seq
	for i := 0; i+minAdapterOverlap <= len(seq); i++ {
		n := len(seq) - i
		if n > len(adapter) {
			n = len(adapter)
		}
		mismatches := 0
		for j := 0; j < n; j++ {
			if seq[i+j] != adapter[j] {
				mismatches++
			}
		}
		if mismatches*10 <= n {
			read.Seq = seq[:i]
			if len(read.Qual) >= i {
				read.Qual = read.Qual[:i]
			}
			stats.Clipped++
			return
		}
	}
}
