package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/pipeline"
	"github.com/seqyuan/s1s2/internal/report"
)

func pipelineCommand() *cobra.Command {
	cfg := config.DefaultPipeline()
	var (
		patterns    string
		lines       string
		pigzThreads int
	)
	cmd := &cobra.Command{
		Use:   "pipeline [files...]",
		Short: "Run s1 with matched-read output, then s2 on every matched file",
		Long: `Run s1 on the inputs, writing matched reads to --s1-dir, then split every
*.gz file in --s1-dir with s2 into --s2-dir/<base>/. With --skip-s1 only the
s2 step runs, on an existing --s1-dir.

Examples:
  s1s2 pipeline -p GATCATGTCGGAACTGTTGCTTGTCCGACTGATC -N all -j 8
  s1s2 pipeline --skip-s1 --s1-dir S1_Matched`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.SkipS1 || patterns != "" {
				if err := cfg.S1.SetPatterns(patterns); err != nil {
					return err
				}
			}
			ll, err := config.ParseLines(lines)
			if err != nil {
				return err
			}
			cfg.S1.Lines = ll
			cfg.S1.Inputs = args
			return runPipeline(cmd.Context(), cfg, pigzThreads, time.Now(), os.Stdout)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&patterns, "patterns", "p", "", "Comma separated sequences that must all be present (required unless --skip-s1)")
	f.StringVarP(&cfg.S1.Description, "description", "d", cfg.S1.Description, "Description written to the summary table")
	f.StringVarP(&cfg.S1.InputPattern, "input-pattern", "i", cfg.S1.InputPattern, "Glob for input FASTQ files")
	f.StringVarP(&cfg.S1.Output, "output", "o", "", "Summary TSV path (default: "+config.DefaultCountDir+"/<timestamp>_<patterns>.tsv)")
	f.StringVarP(&lines, "lines", "N", cfg.S1.Lines.String(), "Lines to read per file in s1, or 'all'")
	f.IntVarP(&cfg.S1.Jobs, "jobs", "j", config.DefaultJobs(), "Number of files processed in parallel")
	f.StringVar(&cfg.S1.MatchedDir, "s1-dir", cfg.S1.MatchedDir, "Directory for s1 matched reads")
	f.StringVar(&cfg.S2Dir, "s2-dir", cfg.S2Dir, "Directory for s2 outputs")
	f.BoolVar(&cfg.S1.WriteUnmatched, "write-unmatched-reads", false, "Also write s1 unmatched reads to <s1-dir>/"+config.DefaultUnmatchedSubdir)
	f.StringVar(&cfg.Sep1, "sep1", cfg.Sep1, "First separator sequence")
	f.StringVar(&cfg.Sep2, "sep2", cfg.Sep2, "Second separator sequence")
	f.IntVar(&cfg.MinLength, "min-length", cfg.MinLength, "Minimum length of both R1 and R2")
	f.StringVar(&cfg.S1.Pigz, "pigz", "", "Path to pigz executable for decompression")
	f.IntVar(&pigzThreads, "pigz-threads", defaultPigzThreads, "Threads per pigz process")
	f.BoolVarP(&cfg.S1.Quiet, "quiet", "q", false, "Hide the progress bar")
	f.BoolVar(&cfg.SkipS1, "skip-s1", false, "Skip s1 and split the existing files in --s1-dir")
	return cmd
}

func runPipeline(ctx context.Context, cfg config.Pipeline, pigzThreads int, now time.Time, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var files []string
	if !cfg.SkipS1 {
		var err error
		if files, err = pipeline.ResolveInputs(cfg.S1.Inputs, cfg.S1.InputPattern); err != nil {
			return err
		}
	}
	hooks, err := newHooks(ctx, cfg.S1.Pigz, pigzThreads)
	if err != nil {
		return err
	}

	// 进度条只覆盖 S1 阶段
	bar := startBar(len(files), cfg.S1.Quiet)
	hooks.OnFile = bar.done
	res, runErr := pipeline.Run(ctx, cfg, files, hooks)
	bar.finish()

	// S1 汇总表在 S2 失败时也写出
	if !cfg.SkipS1 && (len(res.S1.Summaries) > 0 || runErr == nil) {
		tsvPath := report.ResolvePath(cfg.S1.Output, config.DefaultCountDir, now, cfg.S1.Patterns, cfg.S1.Lines.FileTag())
		if err := report.WriteFile(tsvPath, res.S1.Summaries, out); err != nil {
			return err
		}
		printS1Summary(out, len(files), res.S1, tsvPath)
	}
	if runErr != nil {
		return runErr
	}

	for _, r := range res.S2.Splits {
		printSplitReport(out, r)
	}
	total := len(res.S2.Splits) + len(res.S2.Failed)
	fmt.Fprintln(out)
	color.New(color.FgHiGreen).Fprintf(out, "S2 succeeded: %d/%d\n", len(res.S2.Splits), total)
	if len(res.S2.Failed) > 0 {
		color.New(color.FgHiRed).Fprintf(out, "S2 failed: %d/%d\n", len(res.S2.Failed), total)
		for _, f := range res.S2.Failed {
			fmt.Fprintf(out, "  %s\n", f)
		}
		return fmt.Errorf("%d of %d S2 runs failed", len(res.S2.Failed), total)
	}
	color.New(color.FgHiMagenta).Fprintf(out, "Results: %s, %s\n", cfg.S1.MatchedDir, cfg.S2Dir)
	return nil
}
