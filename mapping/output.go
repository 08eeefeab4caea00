package mapping

import (
	"bufio"
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bsmap/encoding/fastq"
	"github.com/grailbio/hts/sam"
)

// recordWriter emits mapped reads in one of the two output formats. frag is
// the fragment length of a mate pair.
type recordWriter interface {
	WriteSingle(read *fastq.Read, bm *BestMatch) error
	WritePair(r1, r2 *fastq.Read, pm *PairMatch, frag int) error
}

// orientRead returns the sequence and quality in reference-forward
// orientation: reverse-strand alignments store the reverse complement, per
// SAM convention. The MR format follows the same convention.
func orientRead(read *fastq.Read, strand byte) (string, string) {
	if strand == '+' {
		return read.Seq, read.Qual
	}
	seq := reverseComplement(read.Seq)
	qual := make([]byte, len(read.Qual))
	for i := 0; i < len(read.Qual); i++ {
		qual[i] = read.Qual[len(read.Qual)-1-i]
	}
	return seq, string(qual)
}

// samWriter writes SAM text records via the hts/sam marshaller.
type samWriter struct {
	w    *bufio.Writer
	refs []*sam.Reference
}

func newSAMWriter(w *bufio.Writer, ref *Reference) (*samWriter, error) {
	refs := make([]*sam.Reference, ref.NumChroms())
	for i, c := range ref.CtoT.Chroms {
		r, err := sam.NewReference(c.Name, "", "", len(c.Seq), nil, nil)
		if err != nil {
			return nil, err
		}
		refs[i] = r
	}
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nil, err
	}
	text, err := h.MarshalText()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(text); err != nil {
		return nil, err
	}
	return &samWriter{w: w, refs: refs}, nil
}

func (w *samWriter) writeRecord(rec *sam.Record) error {
	text, err := rec.MarshalText()
	if err != nil {
		return err
	}
	if _, err := w.w.Write(text); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func auxNM(mismatch int) []sam.Aux {
	aux, err := sam.NewAux(sam.NewTag("NM"), mismatch)
	if err != nil {
		panic(err)
	}
	return []sam.Aux{aux}
}

func (w *samWriter) WriteSingle(read *fastq.Read, bm *BestMatch) error {
	seq, qual := orientRead(read, bm.Strand)
	cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, len(seq))}
	rec, err := sam.NewRecord(read.Name(), w.refs[bm.ChromID], nil,
		int(bm.ChromPos), -1, 0, 255, cigar, []byte(seq), []byte(qual), auxNM(bm.Mismatch))
	if err != nil {
		return err
	}
	if bm.Strand == '-' {
		rec.Flags |= sam.Reverse
	}
	return w.writeRecord(rec)
}

func (w *samWriter) WritePair(r1, r2 *fastq.Read, pm *PairMatch, frag int) error {
	tlen1 := frag
	if pm.Mate2.ChromPos < pm.Mate1.ChromPos {
		tlen1 = -frag
	}
	mates := []struct {
		read  *fastq.Read
		cand  *Candidate
		other *Candidate
		flags sam.Flags
		tlen  int
	}{
		{r1, &pm.Mate1, &pm.Mate2, sam.Read1, tlen1},
		{r2, &pm.Mate2, &pm.Mate1, sam.Read2, -tlen1},
	}
	for _, m := range mates {
		seq, qual := orientRead(m.read, m.cand.Strand)
		cigar := []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, len(seq))}
		rec, err := sam.NewRecord(m.read.Name(), w.refs[m.cand.ChromID], w.refs[m.other.ChromID],
			int(m.cand.ChromPos), int(m.other.ChromPos), m.tlen, 255,
			cigar, []byte(seq), []byte(qual), auxNM(m.cand.Mismatch))
		if err != nil {
			return err
		}
		rec.Flags |= sam.Paired | sam.ProperPair | m.flags
		if m.cand.Strand == '-' {
			rec.Flags |= sam.Reverse
		}
		if m.other.Strand == '-' {
			rec.Flags |= sam.MateReverse
		}
		if err := w.writeRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// mrWriter writes the minimal tab-delimited mapped-read format:
// chromosome, start, end, read name, mismatch count, strand, sequence.
type mrWriter struct {
	w   *bufio.Writer
	ref *Reference
}

func newMRWriter(w *bufio.Writer, ref *Reference) *mrWriter {
	return &mrWriter{w: w, ref: ref}
}

func (w *mrWriter) write(read *fastq.Read, chromID uint16, pos uint32, mismatch int, strand byte) error {
	seq, _ := orientRead(read, strand)
	start := int(pos)
	_, err := fmt.Fprintf(w.w, "%s\t%d\t%d\t%s\t%d\t%c\t%s\n",
		w.ref.CtoT.Chroms[chromID].Name, start, start+len(seq), read.Name(), mismatch, strand, seq)
	return err
}

func (w *mrWriter) WriteSingle(read *fastq.Read, bm *BestMatch) error {
	return w.write(read, bm.ChromID, bm.ChromPos, bm.Mismatch, bm.Strand)
}

func (w *mrWriter) WritePair(r1, r2 *fastq.Read, pm *PairMatch, frag int) error {
	if err := w.write(r1, pm.Mate1.ChromID, pm.Mate1.ChromPos, pm.Mate1.Mismatch, pm.Mate1.Strand); err != nil {
		return err
	}
	return w.write(r2, pm.Mate2.ChromID, pm.Mate2.ChromPos, pm.Mate2.Mismatch, pm.Mate2.Strand)
}

// outputSet owns the primary output and the optional ambiguous and unmapped
// streams of one input file.
type outputSet struct {
	ctx   context.Context
	files []file.File
	bufs  []*bufio.Writer

	out      recordWriter
	amb      recordWriter
	unmapped *bufio.Writer
}

// newOutputSet creates the output file(s) for outPath: the minimal record
// format when opts.MR is set, SAM otherwise. Ambiguous reads go to
// <outPath>_amb and unmapped reads to <outPath>_unmapped when the
// corresponding options are set.
func newOutputSet(ctx context.Context, outPath string, ref *Reference, opts Opts) (*outputSet, error) {
	o := &outputSet{ctx: ctx}
	newWriter := func(path string) (recordWriter, error) {
		w, err := o.create(path)
		if err != nil {
			return nil, err
		}
		if opts.MR {
			return newMRWriter(w, ref), nil
		}
		return newSAMWriter(w, ref)
	}
	var err error
	if o.out, err = newWriter(outPath); err != nil {
		o.Close()
		return nil, err
	}
	if opts.Ambiguous {
		if o.amb, err = newWriter(outPath + "_amb"); err != nil {
			o.Close()
			return nil, err
		}
	}
	if opts.Unmapped {
		if o.unmapped, err = o.create(outPath + "_unmapped"); err != nil {
			o.Close()
			return nil, err
		}
	}
	return o, nil
}

func (o *outputSet) create(path string) (*bufio.Writer, error) {
	f, err := file.Create(o.ctx, path)
	if err != nil {
		return nil, err
	}
	o.files = append(o.files, f)
	w := bufio.NewWriterSize(f.Writer(o.ctx), 1<<20)
	o.bufs = append(o.bufs, w)
	return w, nil
}

// writeUnmapped records an unmapped read as a FASTA-like entry with its
// original sequence.
func (o *outputSet) writeUnmapped(read *fastq.Read) error {
	_, err := fmt.Fprintf(o.unmapped, ">%s\n%s\n", read.Name(), read.Seq)
	return err
}

// Close flushes and closes every stream, returning the first error.
func (o *outputSet) Close() error {
	e := errors.Once{}
	for _, w := range o.bufs {
		e.Set(w.Flush())
	}
	for _, f := range o.files {
		e.Set(f.Close(o.ctx))
	}
	return e.Err()
}
