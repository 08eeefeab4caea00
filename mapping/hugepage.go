package mapping

import (
	"reflect"
	"unsafe"

	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

const hugePageSize = 2 << 20 // size of a Linux transparent hugepage.

// mmapBytes allocates an anonymous read-write region of n bytes, rounded up to
// a hugepage boundary and advised with MADV_HUGEPAGE to reduce TLB misses
// during the random probes of bucket refinement. The region bypasses the Go
// allocator, so the multi-gigabyte index columns contribute nothing to GC
// scans. It is never unmapped; the tables live for the duration of the
// process.
func mmapBytes(n int) []byte {
	if n == 0 {
		return nil
	}
	data, err := unix.Mmap(-1, 0, n+hugePageSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		log.Panicf("ERROR: could not allocate %d bytes for index tables: %v", n, err)
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		log.Panic(err)
	}
	// Round up to a hugePageSize boundary.
	base := uintptr(unsafe.Pointer(&data[0]))
	start := ((base-1)/hugePageSize + 1) * hugePageSize
	off := int(start - base)
	return data[off : off+n]
}

func mmapUint32(n int) []uint32 {
	b := mmapBytes(n * 4)
	if b == nil {
		return nil
	}
	var s []uint32
	h := (*reflect.SliceHeader)(unsafe.Pointer(&s))
	h.Data = uintptr(unsafe.Pointer(&b[0]))
	h.Len = n
	h.Cap = n
	return s
}

func mmapUint16(n int) []uint16 {
	b := mmapBytes(n * 2)
	if b == nil {
		return nil
	}
	var s []uint16
	h := (*reflect.SliceHeader)(unsafe.Pointer(&s))
	h.Data = uintptr(unsafe.Pointer(&b[0]))
	h.Len = n
	h.Cap = n
	return s
}

// NewIndex allocates zeroed index tables sized for the scheme and nPos
// positions. The dbindex reader fills the tables in place.
func NewIndex(scheme SeedScheme, nPos int) Index {
	return Index{
		Buckets:  mmapUint32(scheme.NumBuckets() + 1),
		ChromID:  mmapUint16(nPos),
		ChromPos: mmapUint32(nPos),
	}
}

// NewSeqBuffer allocates a chromosome sequence buffer in the same
// out-of-heap region the index tables use.
func NewSeqBuffer(n int) []byte { return mmapBytes(n) }
