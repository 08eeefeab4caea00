// Package mapping implements the bisulfite read mapping engine: the two
// converted genome images, the hash-and-refine seeder over the sorted
// positional index, the mismatch-bounded verifier, the single-end and
// paired-end resolvers, and the batch pipeline that drives them over FASTQ
// input.
package mapping

// Chromosome holds one converted reference sequence.
type Chromosome struct {
	Name string
	// Seq is the ASCII sequence after bisulfite conversion; it contains only
	// the bytes ACGT.
	Seq []byte
}

// Index is the positional index of one genome image. Positions are stored as
// two parallel columns to keep the binary-search inner loop to one
// indirection per probe.
type Index struct {
	// Buckets has NumBuckets()+1 entries; bucket h spans positions
	// [Buckets[h], Buckets[h+1]) of the columns. Within a bucket, positions
	// are sorted by the reference bases at the discriminator offsets, in
	// scheme order.
	Buckets []uint32
	// ChromID and ChromPos are the position columns.
	ChromID  []uint16
	ChromPos []uint32
}

// Image is one bisulfite image of the reference together with its positional
// index. It is built (or loaded) once and shared read-only across workers.
type Image struct {
	Conv   Conversion
	Chroms []Chromosome
	Index  Index
}

// bucket returns the half-open position range of the bucket for hash h.
func (im *Image) bucket(h uint32) (int, int) {
	return int(im.Index.Buckets[h]), int(im.Index.Buckets[h+1])
}

// Reference bundles the seed scheme and the two genome images.
type Reference struct {
	Scheme SeedScheme
	CtoT   *Image
	GtoA   *Image
}

// Image returns the image for the given conversion.
func (r *Reference) Image(conv Conversion) *Image {
	if conv == CtoT {
		return r.CtoT
	}
	return r.GtoA
}

// NumChroms returns the number of chromosomes in the reference.
func (r *Reference) NumChroms() int { return len(r.CtoT.Chroms) }
