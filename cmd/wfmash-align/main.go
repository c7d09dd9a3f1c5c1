package main

/*
wfmash-align computes base-level alignments for the approximate mappings
emitted by a sketch-based mapper. Each mapping row is realigned with a
pairwise aligner and written back out PAF-shaped, augmented with edit
distance, alignment length, divergence, and an extended CIGAR string.

Example:

   wfmash-align -ref ref.fa.gz -query reads.fa -mappings mashmap.paf \
       -out alignments.paf -threads 8 -identity 85
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ASLeonard/wfmash/align"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	refFlag      = flag.String("ref", "", "Comma-separated list of reference FASTA files, gzipped or plain; required")
	queryFlag    = flag.String("query", "", "Comma-separated list of query FASTA files, ordered consistently with the mapping file; required")
	mappingsFlag = flag.String("mappings", "", "Mashmap mapping file (PAF); required")
	outFlag      = flag.String("out", align.DefaultOpts.OutputPath, "Output alignment file")
	threadsFlag  = flag.Int("threads", align.DefaultOpts.Threads, "Number of alignment worker threads")
	identityFlag = flag.Float64("identity", align.DefaultOpts.PercentIdentity, "Target minimum percent identity; 0 leaves the edit distance unbounded")
	alignerFlag  = flag.String("aligner", align.DefaultOpts.Aligner, "Pairwise aligner backend: 'edit' or 'gap-affine'")
)

func wfmashAlignUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -ref <fasta,...> -query <fasta,...> -mappings <paf> [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = wfmashAlignUsage
	shutdown := grail.Init()
	defer shutdown()

	if *refFlag == "" || *queryFlag == "" || *mappingsFlag == "" {
		flag.Usage()
		log.Fatalf("-ref, -query, and -mappings are all required")
	}

	ctx := vcontext.Background()
	opts := align.DefaultOpts
	opts.RefPaths = strings.Split(*refFlag, ",")
	opts.QueryPaths = strings.Split(*queryFlag, ",")
	opts.MappingPath = *mappingsFlag
	opts.OutputPath = *outFlag
	opts.Threads = *threadsFlag
	opts.PercentIdentity = *identityFlag
	opts.Aligner = *alignerFlag

	aligner, err := align.NewAligner(ctx, opts)
	if err != nil {
		log.Fatalf("wfmash-align: %v", err)
	}
	if err := aligner.Run(ctx); err != nil {
		log.Fatalf("wfmash-align: %v", err)
	}
}
