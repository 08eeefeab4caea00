// Package dbindex reads and writes the .dbindex reference index format
// consumed by the mapping engine, and builds fresh indexes from FASTA input.
//
// A .dbindex file starts with the 16-byte magic sequence below, followed by a
// gzip stream. The stream contains, in order and in little-endian byte order:
//
//	version            uint32
//	seed scheme        uint32 hashLen, hashWeight, seedLength, nPositions,
//	                   then nPositions uint32 window offsets
//	chromosome table   uint32 count K, then K records of
//	                   (uint32 nameLen, name bytes, uint32 seqLen)
//	genome images      the C→T image then the G→A image, each the
//	                   concatenation of its converted chromosome sequences
//	positional indexes for each image in the same order: the position count
//	                   (uint32), the bucket table (uint32 count, then count
//	                   uint32 start offsets), and the position columns (the
//	                   uint16 chromosome-id column, then the uint32
//	                   chromosome-offset column)
//
// Within a bucket, positions are sorted by the reference bases at the seed
// scheme's discriminator offsets; the reader trusts this invariant and the
// seeder depends on it.
package dbindex

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// magic is "BSMAPIDX" followed by a version byte and 7 random bytes.
var magic = []byte{
	'B', 'S', 'M', 'A', 'P', 'I', 'D', 'X',
	0x01, 0x9e, 0x4d, 0x21, 0x7a, 0x33, 0xc5, 0x08,
}

const formatVersion = 1

// binaryWriter accumulates little-endian writes, deferring error handling to
// a single check.
type binaryWriter struct {
	w   io.Writer
	buf [4]byte
	err error
}

func (bw *binaryWriter) uint32(v uint32) {
	if bw.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(bw.buf[:], v)
	_, bw.err = bw.w.Write(bw.buf[:4])
}

func (bw *binaryWriter) uint16(v uint16) {
	if bw.err != nil {
		return
	}
	binary.LittleEndian.PutUint16(bw.buf[:2], v)
	_, bw.err = bw.w.Write(bw.buf[:2])
}

func (bw *binaryWriter) bytes(b []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(b)
}

// binaryReader is the mirror of binaryWriter. Bulk column reads are chunked
// through a scratch buffer to avoid materializing a second copy of the
// tables.
type binaryReader struct {
	r       io.Reader
	buf     [4]byte
	scratch []byte
	err     error
}

func (br *binaryReader) uint32() uint32 {
	if br.err != nil {
		return 0
	}
	if _, br.err = io.ReadFull(br.r, br.buf[:4]); br.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(br.buf[:])
}

func (br *binaryReader) bytes(b []byte) {
	if br.err != nil {
		return
	}
	_, br.err = io.ReadFull(br.r, b)
}

func (br *binaryReader) chunk() []byte {
	if br.scratch == nil {
		br.scratch = make([]byte, 1<<16)
	}
	return br.scratch
}

func (br *binaryReader) uint32Slice(dst []uint32) {
	buf := br.chunk()
	for len(dst) > 0 && br.err == nil {
		n := len(buf) / 4
		if n > len(dst) {
			n = len(dst)
		}
		br.bytes(buf[:n*4])
		for i := 0; i < n; i++ {
			dst[i] = binary.LittleEndian.Uint32(buf[i*4:])
		}
		dst = dst[n:]
	}
}

func (br *binaryReader) uint16Slice(dst []uint16) {
	buf := br.chunk()
	for len(dst) > 0 && br.err == nil {
		n := len(buf) / 2
		if n > len(dst) {
			n = len(dst)
		}
		br.bytes(buf[:n*2])
		for i := 0; i < n; i++ {
			dst[i] = binary.LittleEndian.Uint16(buf[i*2:])
		}
		dst = dst[n:]
	}
}

func checkMagic(r io.Reader) error {
	got := make([]byte, len(magic))
	if _, err := io.ReadFull(r, got); err != nil {
		return errors.Wrap(err, "dbindex: reading magic")
	}
	for i, b := range magic {
		if got[i] != b {
			return errors.New("dbindex: bad magic; not a .dbindex file")
		}
	}
	return nil
}
