package main

// bsmap maps bisulfite-converted short reads (single- or paired-end FASTQ)
// against a .dbindex reference produced by bsmap-mkindex, reporting the best
// Hamming-distance placement of each read together with a unique/ambiguous
// classification. Output is SAM text by default; an output path ending in
// ".mr" selects the minimal tab-delimited mapped-read format.

import (
	"flag"
	"fmt"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bsmap/encoding/dbindex"
	"github.com/grailbio/bsmap/mapping"
)

func hasSuffix(path string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func validateReadsFiles(paths []string) {
	for _, p := range paths {
		if !hasSuffix(p, ".fastq", ".fq", ".fastq.gz", ".fq.gz") {
			log.Fatalf("%s: the suffix of a reads file should be '.fastq' or '.fq'", p)
		}
	}
}

// outputName derives the per-input output path for multi-file runs: input i
// of a single-end list writes to <output>_s<i>, of a paired-end list to
// <output>_p<i>.
func outputName(base string, i, n int, tag string) string {
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s_%s%d", base, tag, i)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var (
		indexFlag  = flag.String("index", "", "Index file created by bsmap-mkindex (the suffix must be '.dbindex').")
		readsFlag  = flag.String("reads", "", "Comma-separated list of read files for single-end mapping.")
		reads1Flag = flag.String("reads1", "", "Comma-separated list of read files for mate 1.")
		reads2Flag = flag.String("reads2", "", "Comma-separated list of read files for mate 2.")
		outputFlag = flag.String("output", "", "Output file name. A '.mr' suffix selects the minimal record format instead of SAM.")
		opts       = mapping.DefaultOpts
	)
	flag.IntVar(&opts.MaxMismatches, "mismatch", mapping.DefaultOpts.MaxMismatches, "Maximum allowed mismatches.")
	flag.IntVar(&opts.NReadsToProcess, "number", mapping.DefaultOpts.NReadsToProcess, "Number of reads to map in one batch.")
	flag.IntVar(&opts.MaxCandidates, "bucket", mapping.DefaultOpts.MaxCandidates, "Maximum candidates for a seed.")
	flag.IntVar(&opts.TopK, "topk", mapping.DefaultOpts.TopK, "Maximum allowed mappings kept per mate (paired-end).")
	flag.IntVar(&opts.FragRange, "fraglen", mapping.DefaultOpts.FragRange, "Maximum fragment length (paired-end).")
	flag.IntVar(&opts.NumThreads, "thread", mapping.DefaultOpts.NumThreads, "Number of threads for mapping.")
	flag.BoolVar(&opts.AGWildcard, "ag-wild", false, "Map using A/G bisulfite wildcards (single-end).")
	flag.StringVar(&opts.Adapter, "clip", "", "Clip the specified adapter.")
	flag.BoolVar(&opts.Ambiguous, "ambiguous", false, "Output one mapped position for ambiguous reads in a separate file.")
	flag.BoolVar(&opts.Unmapped, "unmapped", false, "Output unmapped reads in a separate file.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if *indexFlag == "" || *outputFlag == "" {
		log.Fatal("both -index and -output are required")
	}
	if !hasSuffix(*indexFlag, ".dbindex") {
		log.Fatal("the suffix of the index file should be '.dbindex'")
	}
	var (
		paired bool
		reads  = splitList(*readsFlag)
		reads1 = splitList(*reads1Flag)
		reads2 = splitList(*reads2Flag)
	)
	switch {
	case len(reads) > 0 && len(reads1) == 0 && len(reads2) == 0:
		paired = false
		validateReadsFiles(reads)
	case len(reads) == 0 && len(reads1) > 0 && len(reads2) > 0:
		paired = true
		if len(reads1) != len(reads2) {
			log.Fatal("mate 1 and mate 2 must have the same number of files, in the same order")
		}
		validateReadsFiles(reads1)
		validateReadsFiles(reads2)
	default:
		log.Fatal("use -reads for single-end mapping, or -reads1 and -reads2 for paired-end mapping")
	}
	if opts.NReadsToProcess > mapping.MaxReadsPerBatch {
		opts.NReadsToProcess = mapping.MaxReadsPerBatch
	}
	if opts.NReadsToProcess < 1 || opts.NumThreads < 1 {
		log.Fatal("-number and -thread must be positive")
	}
	if paired && (opts.TopK < mapping.MinTopK || opts.TopK > mapping.MaxTopK) {
		log.Fatalf("-topk must be in [%d,%d] for paired-end reads", mapping.MinTopK, mapping.MaxTopK)
	}
	opts.MR = strings.HasSuffix(*outputFlag, ".mr")

	info, err := dbindex.ReadInfo(ctx, *indexFlag)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("reference: %d chromosomes, %d bases; seed window %d, hash weight %d",
		len(info.ChromNames), info.TotalBases(), info.Scheme.HashLen, info.Scheme.HashWeight)
	log.Printf("max mismatches: %d; threads: %d", opts.MaxMismatches, opts.NumThreads)
	ref, err := dbindex.Read(ctx, *indexFlag)
	if err != nil {
		log.Fatal(err)
	}

	if !paired {
		for i, rp := range reads {
			out := outputName(*outputFlag, i, len(reads), "s")
			stats, err := mapping.MapSingleEndFile(ctx, ref, rp, out, opts)
			if err != nil {
				log.Fatalf("%s: %v", rp, err)
			}
			log.Printf("%s: %d reads: %d unique, %d ambiguous, %d unmapped",
				rp, stats.Reads, stats.Unique, stats.Ambiguous, stats.Unmapped)
		}
	} else {
		for i := range reads1 {
			out := outputName(*outputFlag, i, len(reads1), "p")
			stats, err := mapping.MapPairedEndFiles(ctx, ref, reads1[i], reads2[i], out, opts)
			if err != nil {
				log.Fatalf("%s,%s: %v", reads1[i], reads2[i], err)
			}
			log.Printf("%s,%s: %d pairs: %d unique, %d ambiguous, %d unmapped",
				reads1[i], reads2[i], stats.Pairs, stats.Unique, stats.Ambiguous, stats.Unmapped)
		}
	}
	log.Printf("all done")
}
