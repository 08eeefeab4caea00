package mapping

import "sort"

// Candidate is one alignment retained in a mate's top-k list.
type Candidate struct {
	ChromID  uint16
	ChromPos uint32
	Strand   byte
	Mismatch int
}

func candidateLess(a, b Candidate) bool {
	if a.Mismatch != b.Mismatch {
		return a.Mismatch < b.Mismatch
	}
	if a.ChromID != b.ChromID {
		return a.ChromID < b.ChromID
	}
	if a.ChromPos != b.ChromPos {
		return a.ChromPos < b.ChromPos
	}
	return a.Strand < b.Strand
}

// candidateList keeps the k best candidates by mismatch count, ties broken by
// genomic position. A candidate rediscovered at another seed offset is
// dropped; a tie of the k-th candidate that does not fit is dropped too, but
// the truncation is recorded so that paired-end ambiguity is not silently
// under-counted.
type candidateList struct {
	k         int
	cands     []Candidate
	truncated bool
}

// bound is the mismatch pruning bound for verification: the worst retained
// mismatch once the list is full, the global bound before that.
func (cl *candidateList) bound(maxMismatches int) int {
	if len(cl.cands) < cl.k {
		return maxMismatches
	}
	return cl.cands[len(cl.cands)-1].Mismatch
}

func (cl *candidateList) add(c Candidate) {
	i := sort.Search(len(cl.cands), func(i int) bool { return !candidateLess(cl.cands[i], c) })
	if i < len(cl.cands) && cl.cands[i] == c {
		return
	}
	dropped := -1
	if len(cl.cands) == cl.k {
		if i == cl.k {
			if c.Mismatch == cl.cands[cl.k-1].Mismatch {
				cl.truncated = true
			}
			return
		}
		dropped = cl.cands[cl.k-1].Mismatch
		cl.cands = cl.cands[:cl.k-1]
	}
	cl.cands = append(cl.cands, Candidate{})
	copy(cl.cands[i+1:], cl.cands[i:])
	cl.cands[i] = c
	if dropped >= 0 && dropped == cl.cands[len(cl.cands)-1].Mismatch {
		cl.truncated = true
	}
}

// searchImageTopK is the top-k variant of searchImage: every candidate within
// the list's pruning bound is collected instead of a single running best.
func (s *searcher) searchImageTopK(im *Image, read []byte, strand byte, cl *candidateList) {
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
			bound := cl.bound(s.opts.MaxMismatches)
			if m := countMismatches(chrom.Seq, start, read, bound); m <= bound {
				cl.add(Candidate{ChromID: cid, ChromPos: start, Strand: strand, Mismatch: m})
			}
		}
	}
}

// topK maps one mate against one image, both strands, returning its top-k
// candidate list.
func (s *searcher) topK(im *Image, seq string) *candidateList {
	cl := &candidateList{k: s.opts.TopK}
	if len(seq) < s.ref.Scheme.HashLen {
		return cl
	}
	s.searchImageTopK(im, bisulfiteConvert(seq, im.Conv), '+', cl)
	s.searchImageTopK(im, bisulfiteConvert(reverseComplement(seq), im.Conv), '-', cl)
	return cl
}

// PairMatch records the best mate combination of a read pair. Times counts
// the distinct pair coordinates tied at the minimal mismatch sum; zero means
// no combination satisfied the chromosome and fragment-length constraints.
type PairMatch struct {
	Mate1, Mate2 Candidate
	Times        int
}

// Class classifies the pair.
func (pm *PairMatch) Class() MapClass {
	switch {
	case pm.Times == 0:
		return Unmapped
	case pm.Times == 1:
		return Unique
	}
	return Ambiguous
}

// fragmentLength is the distance between the outermost endpoints of the two
// alignments on the chromosome.
func fragmentLength(a Candidate, lenA int, b Candidate, lenB int) int {
	start := int(a.ChromPos)
	if int(b.ChromPos) < start {
		start = int(b.ChromPos)
	}
	end := int(a.ChromPos) + lenA
	if e := int(b.ChromPos) + lenB; e > end {
		end = e
	}
	return end - start
}

// MapPair resolves a mate pair. Mate 1 is searched on the C→T image and mate
// 2 on the G→A image, per the directional library convention; candidates are
// then combined under the chromosome-equality and fragment-length
// constraints, scored by the sum of per-mate mismatch counts.
//
// A mate that is ambiguous on its own does not preclude a unique pair: the
// fragment-length constraint may admit only one combination.
func MapPair(ref *Reference, seq1, seq2 string, opts Opts, stats *Stats) PairMatch {
	s := searcher{ref: ref, opts: opts, stats: stats}
	l1 := s.topK(ref.CtoT, seq1)
	l2 := s.topK(ref.GtoA, seq2)
	if l1.truncated || l2.truncated {
		stats.TruncatedLists++
	}
	var (
		pm      PairMatch
		bestSum = 2*opts.MaxMismatches + 1
	)
	for _, a := range l1.cands {
		for _, b := range l2.cands {
			if a.ChromID != b.ChromID {
				continue
			}
			if fragmentLength(a, len(seq1), b, len(seq2)) > opts.FragRange {
				continue
			}
			sum := a.Mismatch + b.Mismatch
			if sum < bestSum {
				bestSum = sum
				pm = PairMatch{Mate1: a, Mate2: b, Times: 1}
			} else if sum == bestSum && (a != pm.Mate1 || b != pm.Mate2) {
				pm.Mate1, pm.Mate2 = a, b
				pm.Times++
			}
		}
	}
	return pm
}
