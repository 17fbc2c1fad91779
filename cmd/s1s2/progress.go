package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/seqyuan/s1s2/internal/classify"
	"github.com/seqyuan/s1s2/internal/pigz"
	"github.com/seqyuan/s1s2/internal/pipeline"
	"github.com/seqyuan/s1s2/internal/split"
)

// 文件级进度条；quiet 时为空操作
type fileBar struct {
	bar *pb.ProgressBar
}

func startBar(total int, quiet bool) *fileBar {
	if quiet || total == 0 {
		return &fileBar{}
	}
	return &fileBar{bar: pb.Full.Start64(int64(total))}
}

func (b *fileBar) done(string, error) {
	if b.bar != nil {
		b.bar.Increment()
	}
}

func (b *fileBar) finish() {
	if b.bar != nil {
		b.bar.Finish()
	}
}

// 指定 pigz 路径时用 pigz 解压 .gz 输入
func newHooks(ctx context.Context, pigzPath string, threads int) (pipeline.Hooks, error) {
	if pigzPath == "" {
		return pipeline.Hooks{}, nil
	}
	open, err := pigz.Opener(ctx, pigzPath, threads)
	if err != nil {
		return pipeline.Hooks{}, err
	}
	return pipeline.Hooks{Open: open}, nil
}

func printS1Summary(w io.Writer, files int, res pipeline.S1Result, tsvPath string) {
	total, fwd, rev := sampleTotals(res.Summaries)
	fmt.Fprintln(w)
	color.New(color.FgHiGreen).Fprintf(w, "Processed %d/%d files, %s reads in total\n",
		len(res.Summaries), files, humanize.Comma(total))
	fmt.Fprintf(w, "Forward matches: %s, reverse-complement matches: %s\n", humanize.Comma(fwd), humanize.Comma(rev))
	if len(res.Failed) > 0 {
		color.New(color.FgHiRed).Fprintf(w, "Failed files (%d):\n", len(res.Failed))
		for _, f := range res.Failed {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	color.New(color.FgHiMagenta).Fprintf(w, "Summary table written to %s\n", tsvPath)
}

func printSplitReport(w io.Writer, r pipeline.SplitResult) {
	st := r.Stats
	fmt.Fprintf(w, "\n%s\n", r.Input)
	fmt.Fprintf(w, "  Total reads:     %s\n", humanize.Comma(st.Total))
	color.New(color.FgHiGreen).Fprintf(w, "  Paired reads:    %s (%.2f%%)\n", humanize.Comma(st.Paired), st.PairedRate())
	color.New(color.FgHiMagenta).Fprintf(w, "  Discarded reads: %s\n", humanize.Comma(st.Discarded))
	if st.Skipped > 0 {
		color.New(color.FgHiRed).Fprintf(w, "  Skipped malformed records: %s\n", humanize.Comma(st.Skipped))
	}
	fmt.Fprintln(w, "  Orientation:")
	for _, o := range split.Orientations() {
		fmt.Fprintf(w, "    %-13s %s\n", o.String()+":", humanize.Comma(st.ByOrientation[o]))
	}
	outs := split.OutputPaths(r.Input, r.OutDir)
	fmt.Fprintf(w, "  Outputs: %s, %s, %s\n", outs.R1, outs.R2, outs.Discarded)
}

func sampleTotals(s []classify.Summary) (total, fwd, rev int64) {
	for _, x := range s {
		total += x.Total
		fwd += x.Forward
		rev += x.Reverse
	}
	return total, fwd, rev
}
