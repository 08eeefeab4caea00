package main

// bsmap-mkindex builds a .dbindex reference index from a FASTA file: both
// bisulfite images (C→T and G→A) of every chromosome, plus a sorted
// positional index per image.

import (
	"flag"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bsmap/encoding/dbindex"
	"github.com/grailbio/bsmap/mapping"
)

func main() {
	var (
		fastaFlag  = flag.String("fasta", "", "Reference genome FASTA file.")
		outputFlag = flag.String("output", "", "Output index file name (the suffix must be '.dbindex').")
	)
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if *fastaFlag == "" || *outputFlag == "" {
		log.Fatal("both -fasta and -output are required")
	}
	if !strings.HasSuffix(*outputFlag, ".dbindex") {
		log.Fatal("the suffix of the index file should be '.dbindex'")
	}
	ref, err := dbindex.BuildFromFASTA(ctx, *fastaFlag, mapping.DefaultScheme)
	if err != nil {
		log.Fatal(err)
	}
	if err := dbindex.Write(ctx, *outputFlag, ref); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", *outputFlag)
}
