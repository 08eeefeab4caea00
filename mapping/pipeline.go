package mapping

import (
	"context"
	"io"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/bsmap/encoding/fastq"
)

// The batch pipeline. The orchestrating goroutine alone reads input and
// writes output; each batch is partitioned into shared-nothing worker shards
// that write results into pre-indexed slots, so output order equals input
// order regardless of thread count.

// openReads opens a reads file, transparently decompressing it when the path
// names a compressed file.
func openReads(ctx context.Context, path string) (io.Reader, func() error, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = f.Reader(ctx)
	if u := compress.NewReaderPath(r, f.Name()); u != nil {
		r = u
	}
	return r, func() error { return f.Close(ctx) }, nil
}

// shardRange returns the half-open slice of n items owned by worker w of
// nWorkers.
func shardRange(n, nWorkers, w int) (int, int) {
	per := (n + nWorkers - 1) / nWorkers
	lo := w * per
	hi := lo + per
	if lo > n {
		lo = n
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// MapSingleEndFile maps one single-end FASTQ file against the reference and
// writes the results to outPath, batch by batch.
func MapSingleEndFile(ctx context.Context, ref *Reference, readsPath, outPath string, opts Opts) (Stats, error) {
	var stats Stats
	in, closeIn, err := openReads(ctx, readsPath)
	if err != nil {
		return stats, err
	}
	out, err := newOutputSet(ctx, outPath, ref, opts)
	if err != nil {
		e := errors.Once{}
		e.Set(err)
		e.Set(closeIn())
		return stats, e.Err()
	}
	sc := fastq.NewScanner(in)
	batch := make([]fastq.Read, 0, opts.NReadsToProcess)
	results := make([]BestMatch, 0, opts.NReadsToProcess)
	for err == nil {
		batch = batch[:0]
		for len(batch) < opts.NReadsToProcess {
			var r fastq.Read
			if !sc.Scan(&r) {
				break
			}
			if opts.Adapter != "" {
				clipAdapter(&r, opts.Adapter, &stats)
			}
			batch = append(batch, r)
		}
		if len(batch) == 0 {
			break
		}
		results = results[:len(batch)]
		shardStats := make([]Stats, opts.NumThreads)
		err = traverse.Each(opts.NumThreads, func(w int) error {
			lo, hi := shardRange(len(batch), opts.NumThreads, w)
			for i := lo; i < hi; i++ {
				results[i] = MapRead(ref, batch[i].Seq, opts, &shardStats[w])
			}
			return nil
		})
		if err != nil {
			break
		}
		for _, s := range shardStats {
			stats = stats.Merge(s)
		}
		for i := range batch {
			stats.Reads++
			if err = writeSingle(out, &batch[i], &results[i], opts, &stats); err != nil {
				break
			}
		}
		if err == nil {
			log.Printf("%s: mapped %d reads", readsPath, stats.Reads)
		}
	}
	e := errors.Once{}
	e.Set(err)
	e.Set(sc.Err())
	e.Set(closeIn())
	e.Set(out.Close())
	return stats, e.Err()
}

func writeSingle(out *outputSet, read *fastq.Read, bm *BestMatch, opts Opts, stats *Stats) error {
	switch bm.Class(opts.MaxMismatches) {
	case Unique:
		stats.Unique++
		return out.out.WriteSingle(read, bm)
	case Ambiguous:
		stats.Ambiguous++
		if out.amb != nil {
			return out.amb.WriteSingle(read, bm)
		}
	default:
		stats.Unmapped++
		if out.unmapped != nil {
			return out.writeUnmapped(read)
		}
	}
	return nil
}

// MapPairedEndFiles maps a pair of parallel mate FASTQ files against the
// reference and writes the results to outPath, batch by batch. Mate 1 is
// resolved on the C→T image and mate 2 on the G→A image.
func MapPairedEndFiles(ctx context.Context, ref *Reference, reads1Path, reads2Path, outPath string, opts Opts) (Stats, error) {
	var stats Stats
	in1, closeIn1, err := openReads(ctx, reads1Path)
	if err != nil {
		return stats, err
	}
	in2, closeIn2, err := openReads(ctx, reads2Path)
	if err != nil {
		e := errors.Once{}
		e.Set(err)
		e.Set(closeIn1())
		return stats, e.Err()
	}
	closeIn := func() error {
		e := errors.Once{}
		e.Set(closeIn1())
		e.Set(closeIn2())
		return e.Err()
	}
	out, err := newOutputSet(ctx, outPath, ref, opts)
	if err != nil {
		e := errors.Once{}
		e.Set(err)
		e.Set(closeIn())
		return stats, e.Err()
	}
	sc := fastq.NewPairScanner(in1, in2)
	batch1 := make([]fastq.Read, 0, opts.NReadsToProcess)
	batch2 := make([]fastq.Read, 0, opts.NReadsToProcess)
	results := make([]PairMatch, 0, opts.NReadsToProcess)
	for err == nil {
		batch1, batch2 = batch1[:0], batch2[:0]
		for len(batch1) < opts.NReadsToProcess {
			var r1, r2 fastq.Read
			if !sc.Scan(&r1, &r2) {
				break
			}
			if opts.Adapter != "" {
				clipAdapter(&r1, opts.Adapter, &stats)
				clipAdapter(&r2, opts.Adapter, &stats)
			}
			batch1 = append(batch1, r1)
			batch2 = append(batch2, r2)
		}
		if len(batch1) == 0 {
			break
		}
		results = results[:len(batch1)]
		shardStats := make([]Stats, opts.NumThreads)
		err = traverse.Each(opts.NumThreads, func(w int) error {
			lo, hi := shardRange(len(batch1), opts.NumThreads, w)
			for i := lo; i < hi; i++ {
				results[i] = MapPair(ref, batch1[i].Seq, batch2[i].Seq, opts, &shardStats[w])
			}
			return nil
		})
		if err != nil {
			break
		}
		for _, s := range shardStats {
			stats = stats.Merge(s)
		}
		for i := range batch1 {
			stats.Pairs++
			if err = writePair(out, &batch1[i], &batch2[i], &results[i], &stats); err != nil {
				break
			}
		}
		if err == nil {
			log.Printf("%s,%s: mapped %d read pairs", reads1Path, reads2Path, stats.Pairs)
		}
	}
	e := errors.Once{}
	e.Set(err)
	e.Set(sc.Err())
	e.Set(closeIn())
	e.Set(out.Close())
	return stats, e.Err()
}

func writePair(out *outputSet, r1, r2 *fastq.Read, pm *PairMatch, stats *Stats) error {
	switch pm.Class() {
	case Unique:
		stats.Unique++
		frag := fragmentLength(pm.Mate1, len(r1.Seq), pm.Mate2, len(r2.Seq))
		return out.out.WritePair(r1, r2, pm, frag)
	case Ambiguous:
		stats.Ambiguous++
		if out.amb != nil {
			frag := fragmentLength(pm.Mate1, len(r1.Seq), pm.Mate2, len(r2.Seq))
			return out.amb.WritePair(r1, r2, pm, frag)
		}
	default:
		stats.Unmapped++
		if out.unmapped != nil {
			if err := out.writeUnmapped(r1); err != nil {
				return err
			}
			return out.writeUnmapped(r2)
		}
	}
	return nil
}
