package dbindex

import (
	"bufio"
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/bsmap/mapping"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Info summarizes a .dbindex header without loading the genome images.
type Info struct {
	Scheme       mapping.SeedScheme
	ChromNames   []string
	ChromLengths []int
}

// TotalBases returns the summed chromosome lengths.
func (i *Info) TotalBases() int {
	n := 0
	for _, l := range i.ChromLengths {
		n += l
	}
	return n
}

func readHeader(br *binaryReader) (*Info, error) {
	if v := br.uint32(); br.err == nil && v != formatVersion {
		return nil, errors.Errorf("dbindex: unsupported format version %d", v)
	}
	info := &Info{}
	info.Scheme.HashLen = int(br.uint32())
	info.Scheme.HashWeight = int(br.uint32())
	info.Scheme.SeedLength = int(br.uint32())
	nPositions := int(br.uint32())
	if br.err == nil {
		info.Scheme.Positions = make([]uint32, nPositions)
		br.uint32Slice(info.Scheme.Positions)
	}
	if br.err != nil {
		return nil, errors.Wrap(br.err, "dbindex: reading seed scheme")
	}
	if err := info.Scheme.Validate(); err != nil {
		return nil, errors.Wrap(err, "dbindex: corrupt seed scheme")
	}
	nChroms := int(br.uint32())
	for i := 0; i < nChroms && br.err == nil; i++ {
		name := make([]byte, br.uint32())
		br.bytes(name)
		info.ChromNames = append(info.ChromNames, string(name))
		info.ChromLengths = append(info.ChromLengths, int(br.uint32()))
	}
	if br.err != nil {
		return nil, errors.Wrap(br.err, "dbindex: reading chromosome table")
	}
	return info, nil
}

func open(ctx context.Context, path string) (*binaryReader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "dbindex: open %s", path)
	}
	r := bufio.NewReaderSize(in.Reader(ctx), 1<<20)
	if err := checkMagic(r); err != nil {
		_ = in.Close(ctx)
		return nil, nil, err
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		_ = in.Close(ctx)
		return nil, nil, errors.Wrapf(err, "dbindex: open gzip stream of %s", path)
	}
	return &binaryReader{r: gz}, func() error { return in.Close(ctx) }, nil
}

// ReadInfo reads only the header of a .dbindex file.
func ReadInfo(ctx context.Context, path string) (*Info, error) {
	br, closeIn, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	info, err := readHeader(br)
	if cerr := closeIn(); err == nil {
		err = cerr
	}
	return info, err
}

// Read loads a .dbindex file into memory. The genome images and index tables
// are placed in out-of-heap regions shared read-only by the mapping workers.
func Read(ctx context.Context, path string) (*mapping.Reference, error) {
	br, closeIn, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer closeIn() // nolint: errcheck
	info, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	ref := &mapping.Reference{Scheme: info.Scheme}
	for _, conv := range []mapping.Conversion{mapping.CtoT, mapping.GtoA} {
		im := &mapping.Image{Conv: conv}
		for i, name := range info.ChromNames {
			seq := mapping.NewSeqBuffer(info.ChromLengths[i])
			br.bytes(seq)
			im.Chroms = append(im.Chroms, mapping.Chromosome{Name: name, Seq: seq})
		}
		if conv == mapping.CtoT {
			ref.CtoT = im
		} else {
			ref.GtoA = im
		}
	}
	if br.err != nil {
		return nil, errors.Wrapf(br.err, "dbindex: reading genome images of %s", path)
	}
	for _, im := range []*mapping.Image{ref.CtoT, ref.GtoA} {
		nPos := int(br.uint32())
		nBuckets := int(br.uint32())
		if br.err == nil && nBuckets != info.Scheme.NumBuckets()+1 {
			return nil, errors.Errorf("dbindex: bucket table of %d entries, want %d",
				nBuckets, info.Scheme.NumBuckets()+1)
		}
		im.Index = mapping.NewIndex(info.Scheme, nPos)
		br.uint32Slice(im.Index.Buckets)
		br.uint16Slice(im.Index.ChromID)
		br.uint32Slice(im.Index.ChromPos)
		if br.err != nil {
			return nil, errors.Wrapf(br.err, "dbindex: reading %s index of %s", im.Conv, path)
		}
		vlog.Infof("dbindex: loaded %s index, %d positions", im.Conv, nPos)
	}
	return ref, nil
}
