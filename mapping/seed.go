package mapping

// The seeder narrows a hash bucket to the subrange of positions whose
// reference bases agree with the read at every discriminator offset. The
// bucket is globally sorted by the base vector at those offsets, so each
// discriminator admits a lower-bound/upper-bound pair of binary searches, and
// the bounds tighten monotonically from one discriminator to the next.
// A surviving position can still fail full verification; the verifier is the
// exact filter.

// discBase returns the reference base of position i of the index columns at
// window offset off.
func (im *Image) discBase(i int, off uint32) byte {
	idx := &im.Index
	return im.Chroms[idx.ChromID[i]].Seq[idx.ChromPos[i]+off]
}

// refineBucket narrows the closed interval [low, high] of the position
// columns to the positions matching seed at every discriminator offset.
// When no position in the interval matches, the result collapses to a single
// non-matching position rather than becoming empty, and the verifier rejects
// it; the low > high check of the callers is a guard only.
func (im *Image) refineBucket(scheme SeedScheme, seed []byte, low, high int) (int, int) {
	for p := scheme.HashWeight; p < scheme.SeedLength; p++ {
		off := scheme.Positions[p]
		ch := seed[off]
		// Lower bound: first position in [low, high] with base >= ch.
		l, h := low, high
		for l < h {
			mid := (l + h) / 2
			if im.discBase(mid, off) >= ch {
				h = mid
			} else {
				l = mid + 1
			}
		}
		low = l
		// Upper bound: last position in [low, high] with base <= ch.
		l, h = low, high
		for l < h {
			mid := (l + h + 1) / 2
			if im.discBase(mid, off) <= ch {
				l = mid
			} else {
				h = mid - 1
			}
		}
		high = l
		if low > high {
			break
		}
	}
	return low, high
}
