package dbindex

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bsmap/mapping"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// parseFASTA reads a FASTA stream into parallel name and sequence lists.
// A sequence name is the stretch of characters after '>' up to the first
// space; anything after the space is ignored. Sequence lines may be
// interrupted by newlines arbitrarily.
func parseFASTA(r io.Reader) ([]string, []string, error) {
	var (
		names []string
		seqs  []string
		cur   bytes.Buffer
		open  bool
	)
	flush := func() {
		if open {
			seqs = append(seqs, cur.String())
			cur.Reset()
		}
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 256*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			flush()
			name := line[1:]
			if i := bytes.IndexByte(name, ' '); i >= 0 {
				name = name[:i]
			}
			if len(name) == 0 {
				return nil, nil, errors.New("fasta: empty sequence name")
			}
			names = append(names, string(name))
			open = true
			continue
		}
		if !open {
			return nil, nil, errors.New("fasta: sequence data before the first '>' header")
		}
		cur.Write(line)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "fasta: scan")
	}
	flush()
	return names, seqs, nil
}

// BuildFromFASTA parses the reference FASTA at fastaPath and builds the
// in-memory reference, ready to be written with Write. The file may be
// compressed.
func BuildFromFASTA(ctx context.Context, fastaPath string, scheme mapping.SeedScheme) (*mapping.Reference, error) {
	in, err := file.Open(ctx, fastaPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dbindex: open %s", fastaPath)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	names, seqs, err := parseFASTA(r)
	if cerr := in.Close(ctx); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	nBases := 0
	for _, s := range seqs {
		nBases += len(s)
	}
	vlog.Infof("dbindex: read %d chromosomes (%d bases) from %s", len(names), nBases, fastaPath)
	ref, err := mapping.BuildReference(names, seqs, scheme)
	if err != nil {
		return nil, errors.Wrapf(err, "dbindex: indexing %s", fastaPath)
	}
	return ref, nil
}
