package mapping

import (
	"fmt"
	"math"
	"sort"
)

// BuildReference converts the raw chromosome sequences into the two bisulfite
// images and builds a positional index for each. Raw sequences may contain
// lowercase and ambiguity letters; the conversion canonicalizes them.
func BuildReference(names []string, seqs []string, scheme SeedScheme) (*Reference, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	if len(names) != len(seqs) {
		return nil, fmt.Errorf("reference: %d names for %d sequences", len(names), len(seqs))
	}
	if len(names) > math.MaxUint16 {
		return nil, fmt.Errorf("reference: %d chromosomes exceed the %d limit of the position layout",
			len(names), math.MaxUint16)
	}
	ref := &Reference{
		Scheme: scheme,
		CtoT:   buildImage(names, seqs, scheme, CtoT),
		GtoA:   buildImage(names, seqs, scheme, GtoA),
	}
	return ref, nil
}

func buildImage(names []string, seqs []string, scheme SeedScheme, conv Conversion) *Image {
	im := &Image{Conv: conv}
	nPos := 0
	for i := range seqs {
		converted := bisulfiteConvert(seqs[i], conv)
		im.Chroms = append(im.Chroms, Chromosome{Name: names[i], Seq: converted})
		if n := len(converted) - scheme.HashLen + 1; n > 0 {
			nPos += n
		}
	}
	im.Index = NewIndex(scheme, nPos)

	// Counting sort of all seedable positions into their buckets. Pass one
	// counts bucket sizes, pass two places positions using Buckets[h] as the
	// bucket cursor, and the final shift turns cursors back into start
	// offsets.
	nb := scheme.NumBuckets()
	buckets := im.Index.Buckets
	eachPosition(im, scheme, func(h uint32, cid uint16, cpos uint32) {
		buckets[h+1]++
	})
	for h := 1; h <= nb; h++ {
		buckets[h] += buckets[h-1]
	}
	starts := buckets[:nb] // reused as placement cursors
	eachPosition(im, scheme, func(h uint32, cid uint16, cpos uint32) {
		j := starts[h]
		im.Index.ChromID[j] = cid
		im.Index.ChromPos[j] = cpos
		starts[h] = j + 1
	})
	for h := nb - 1; h > 0; h-- {
		buckets[h] = buckets[h-1]
	}
	buckets[0] = 0

	// Sort every bucket by the reference bases at the discriminator offsets;
	// this is the invariant the seeder's binary searches rely on. Ties are
	// broken by genome position so that index construction is deterministic.
	for h := 0; h < nb; h++ {
		lo, hi := int(buckets[h]), int(buckets[h+1])
		if hi-lo > 1 {
			sort.Sort(&bucketSorter{im: im, scheme: scheme, lo: lo, n: hi - lo})
		}
	}
	return im
}

// eachPosition calls fn for every position whose full seed window fits within
// its chromosome.
func eachPosition(im *Image, scheme SeedScheme, fn func(h uint32, cid uint16, cpos uint32)) {
	for cid := range im.Chroms {
		seq := im.Chroms[cid].Seq
		for p := 0; p+scheme.HashLen <= len(seq); p++ {
			fn(scheme.hashSeed(seq[p:]), uint16(cid), uint32(p))
		}
	}
}

// bucketSorter sorts one bucket of the position columns in place.
type bucketSorter struct {
	im     *Image
	scheme SeedScheme
	lo, n  int
}

func (b *bucketSorter) Len() int { return b.n }

func (b *bucketSorter) Less(i, j int) bool {
	idx := &b.im.Index
	ci, pi := idx.ChromID[b.lo+i], idx.ChromPos[b.lo+i]
	cj, pj := idx.ChromID[b.lo+j], idx.ChromPos[b.lo+j]
	si := b.im.Chroms[ci].Seq
	sj := b.im.Chroms[cj].Seq
	for _, off := range b.scheme.Positions[b.scheme.HashWeight:b.scheme.SeedLength] {
		bi, bj := si[pi+off], sj[pj+off]
		if bi != bj {
			return bi < bj
		}
	}
	if ci != cj {
		return ci < cj
	}
	return pi < pj
}

func (b *bucketSorter) Swap(i, j int) {
	idx := &b.im.Index
	idx.ChromID[b.lo+i], idx.ChromID[b.lo+j] = idx.ChromID[b.lo+j], idx.ChromID[b.lo+i]
	idx.ChromPos[b.lo+i], idx.ChromPos[b.lo+j] = idx.ChromPos[b.lo+j], idx.ChromPos[b.lo+i]
}
