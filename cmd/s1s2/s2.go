package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/pipeline"
	"github.com/seqyuan/s1s2/internal/split"
)

func s2Command() *cobra.Command {
	cfg := config.DefaultS2()
	var pigzThreads int
	cmd := &cobra.Command{
		Use:   "s2",
		Short: "Split reads at two separator sequences into R1/R2 fragments",
		Long: `Search every read for sep1 followed by sep2 in four orientations
(forward, reverse, mixed_fwd_rc, mixed_rc_fwd) and keep the candidate with the
shortest R2 span. R1 is the sequence before sep1, R2 the sequence between sep1
and sep2. Reads without a candidate, or with a fragment shorter than
--min-length, are written unchanged to <base>_discarded.fq.gz.

Example:
  s1s2 s2 -i S1_Matched/lib1.fq.gz -o S2_Split/lib1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runS2(cmd.Context(), cfg, pigzThreads, os.Stdout)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&cfg.Input, "input", "i", "", "Input FASTQ file (gzip or plain)")
	f.StringVarP(&cfg.OutDir, "outdir", "o", "", "Output directory")
	f.StringVar(&cfg.Sep1, "sep1", cfg.Sep1, "First separator sequence")
	f.StringVar(&cfg.Sep2, "sep2", cfg.Sep2, "Second separator sequence")
	f.IntVar(&cfg.MinLength, "min-length", cfg.MinLength, "Minimum length of both R1 and R2")
	f.StringVar(&cfg.Pigz, "pigz", "", "Path to pigz executable for decompression")
	f.IntVar(&pigzThreads, "pigz-threads", defaultPigzThreads, "Threads per pigz process")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("outdir")
	return cmd
}

func runS2(ctx context.Context, cfg config.S2, pigzThreads int, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	seps, err := split.NewSeparators(cfg.Sep1, cfg.Sep2)
	if err != nil {
		return err
	}
	hooks, err := newHooks(ctx, cfg.Pigz, pigzThreads)
	if err != nil {
		return err
	}

	log.Printf("Splitting %s (sep1=%s, sep2=%s, min length %d)", cfg.Input, cfg.Sep1, cfg.Sep2, cfg.MinLength)
	sp := split.Splitter{Separators: seps, MinLength: cfg.MinLength}
	res, err := pipeline.SplitOne(ctx, cfg.Input, cfg.OutDir, sp, hooks, out)
	if err != nil {
		return err
	}
	printSplitReport(out, res)
	return nil
}
