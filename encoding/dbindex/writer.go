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

// Write serializes the reference to path in .dbindex format.
func Write(ctx context.Context, path string, ref *mapping.Reference) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "dbindex: create %s", path)
	}
	w := bufio.NewWriterSize(out.Writer(ctx), 1<<20)
	if _, err := w.Write(magic); err != nil {
		return errors.Wrap(err, "dbindex: write magic")
	}
	gz := gzip.NewWriter(w)
	bw := &binaryWriter{w: gz}

	bw.uint32(formatVersion)
	scheme := ref.Scheme
	bw.uint32(uint32(scheme.HashLen))
	bw.uint32(uint32(scheme.HashWeight))
	bw.uint32(uint32(scheme.SeedLength))
	bw.uint32(uint32(len(scheme.Positions)))
	for _, p := range scheme.Positions {
		bw.uint32(p)
	}

	chroms := ref.CtoT.Chroms
	bw.uint32(uint32(len(chroms)))
	for _, c := range chroms {
		bw.uint32(uint32(len(c.Name)))
		bw.bytes([]byte(c.Name))
		bw.uint32(uint32(len(c.Seq)))
	}

	for _, im := range []*mapping.Image{ref.CtoT, ref.GtoA} {
		for _, c := range im.Chroms {
			bw.bytes(c.Seq)
		}
	}
	for _, im := range []*mapping.Image{ref.CtoT, ref.GtoA} {
		idx := &im.Index
		bw.uint32(uint32(len(idx.ChromID)))
		bw.uint32(uint32(len(idx.Buckets)))
		for _, v := range idx.Buckets {
			bw.uint32(v)
		}
		for _, v := range idx.ChromID {
			bw.uint16(v)
		}
		for _, v := range idx.ChromPos {
			bw.uint32(v)
		}
		vlog.Infof("dbindex: wrote %s index, %d positions", im.Conv, len(idx.ChromID))
	}
	if bw.err != nil {
		return errors.Wrapf(bw.err, "dbindex: write %s", path)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "dbindex: close gzip stream of %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "dbindex: flush %s", path)
	}
	return out.Close(ctx)
}
