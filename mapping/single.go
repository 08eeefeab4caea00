package mapping

// numSeedOffsets is the range of read offsets at which seeds are extracted.
// An alignment is found only if the read agrees with the reference at every
// compared seed position of the window at one of these offsets.
const numSeedOffsets = 7

type searcher struct {
	ref   *Reference
	opts  Opts
	stats *Stats
}

// searchImage runs the seeder and verifier for one converted read against one
// image, updating best in place. The read must already be converted to the
// image's convention; strand tags the resulting coordinates.
func (s *searcher) searchImage(im *Image, read []byte, strand byte, best *BestMatch) {
	scheme := s.ref.Scheme
	for i := 0; i < numSeedOffsets && i+scheme.HashLen <= len(read); i++ {
		seed := read[i:]
		lo, hi := im.bucket(scheme.hashSeed(seed))
		if lo >= hi {
			continue
		}
		low, high := im.refineBucket(scheme, seed, lo, hi-1)
		if low > high {
			continue
		}
		if high-low+1 > s.opts.MaxCandidates {
			// Low-complexity seed; skipping the region bounds worst-case work.
			s.stats.OverflowSeeds++
			continue
		}
		for j := low; j <= high; j++ {
			cid := im.Index.ChromID[j]
			cpos := im.Index.ChromPos[j]
			if cpos < uint32(i) {
				continue
			}
			start := cpos - uint32(i)
			chrom := &im.Chroms[cid]
			if int(start)+len(read) >= len(chrom.Seq) {
				continue
			}
			m := countMismatches(chrom.Seq, start, read, best.Mismatch)
			if m < best.Mismatch {
				*best = BestMatch{ChromID: cid, ChromPos: start, Strand: strand, Mismatch: m, Times: 1}
			} else if m == best.Mismatch &&
				(best.ChromID != cid || best.ChromPos != start || best.Strand != strand) {
				best.ChromID, best.ChromPos, best.Strand = cid, start, strand
				best.Times++
			}
		}
	}
}

// MapRead resolves a single-end read: both strands against the C→T image and,
// in A/G wildcard mode, both strands against the G→A image as well.
func MapRead(ref *Reference, seq string, opts Opts, stats *Stats) BestMatch {
	best := BestMatch{Mismatch: opts.MaxMismatches + 1}
	if len(seq) < ref.Scheme.HashLen {
		return best
	}
	s := searcher{ref: ref, opts: opts, stats: stats}
	s.searchImage(ref.CtoT, bisulfiteConvert(seq, CtoT), '+', &best)
	s.searchImage(ref.CtoT, bisulfiteConvert(reverseComplement(seq), CtoT), '-', &best)
	if opts.AGWildcard {
		s.searchImage(ref.GtoA, bisulfiteConvert(seq, GtoA), '+', &best)
		s.searchImage(ref.GtoA, bisulfiteConvert(reverseComplement(seq), GtoA), '-', &best)
	}
	return best
}
