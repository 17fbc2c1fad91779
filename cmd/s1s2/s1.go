package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/pipeline"
	"github.com/seqyuan/s1s2/internal/report"
)

const defaultPigzThreads = 4

func s1Command() *cobra.Command {
	cfg := config.DefaultS1()
	var (
		patterns    string
		lines       string
		pigzThreads int
	)
	cmd := &cobra.Command{
		Use:   "s1 [files...]",
		Short: "Count reads containing all patterns forward or reverse-complemented",
		Long: `Count, for every FASTQ file, the reads whose sequence contains every pattern
(forward match) and the reads containing every reverse-complemented pattern
(reverse match). A read may be counted in both columns.

Files given as arguments take precedence over --input-pattern.

Examples:
  s1s2 s1 -p AGATCGGAAG,CTGTCTCTTA
  s1s2 s1 -p AGATCGGAAG -N all -j 8 --write-matching-reads lib1.fq.gz lib2.fq.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SetPatterns(patterns); err != nil {
				return err
			}
			ll, err := config.ParseLines(lines)
			if err != nil {
				return err
			}
			cfg.Lines = ll
			cfg.Inputs = args
			return runS1(cmd.Context(), cfg, pigzThreads, time.Now(), os.Stdout)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&patterns, "patterns", "p", "", "Comma separated sequences that must all be present")
	f.StringVarP(&cfg.Description, "description", "d", cfg.Description, "Description written to the summary table")
	f.StringVarP(&cfg.InputPattern, "input-pattern", "i", cfg.InputPattern, "Glob for input FASTQ files")
	f.StringVarP(&cfg.Output, "output", "o", "", "Summary TSV path (default: "+config.DefaultCountDir+"/<timestamp>_<patterns>.tsv)")
	f.StringVarP(&lines, "lines", "N", cfg.Lines.String(), "Lines to read per file, or 'all'")
	f.IntVarP(&cfg.Jobs, "jobs", "j", config.DefaultJobs(), "Number of files processed in parallel")
	f.BoolVar(&cfg.WriteMatched, "write-matching-reads", false, "Write matched reads to --fastq-output-dir")
	f.StringVar(&cfg.MatchedDir, "fastq-output-dir", cfg.MatchedDir, "Directory for matched reads")
	f.BoolVar(&cfg.WriteUnmatched, "write-unmatched-reads", false, "Also write unmatched reads to <fastq-output-dir>/"+config.DefaultUnmatchedSubdir)
	f.StringVar(&cfg.Pigz, "pigz", "", "Path to pigz executable for decompression")
	f.IntVar(&pigzThreads, "pigz-threads", defaultPigzThreads, "Threads per pigz process")
	f.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Hide the progress bar")
	_ = cmd.MarkFlagRequired("patterns")
	return cmd
}

func runS1(ctx context.Context, cfg config.S1, pigzThreads int, now time.Time, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	files, err := pipeline.ResolveInputs(cfg.Inputs, cfg.InputPattern)
	if err != nil {
		return err
	}
	hooks, err := newHooks(ctx, cfg.Pigz, pigzThreads)
	if err != nil {
		return err
	}

	log.Printf("Patterns: %s (lines per file: %s)", cfg.PatternSpec, cfg.Lines)
	bar := startBar(len(files), cfg.Quiet)
	hooks.OnFile = bar.done
	res, err := pipeline.RunS1(ctx, cfg, files, hooks)
	bar.finish()
	if err != nil {
		return err
	}

	tsvPath := report.ResolvePath(cfg.Output, config.DefaultCountDir, now, cfg.Patterns, cfg.Lines.FileTag())
	if err := report.WriteFile(tsvPath, res.Summaries, out); err != nil {
		return err
	}
	printS1Summary(out, len(files), res, tsvPath)
	return nil
}
