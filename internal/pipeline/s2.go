package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/fqio"
	"github.com/seqyuan/s1s2/internal/pool"
	"github.com/seqyuan/s1s2/internal/split"
)

// SplitResult 单个文件的 S2 结果
type SplitResult struct {
	Input  string
	OutDir string
	Stats  split.Stats
}

// S2Result 多个文件的 S2 结果
type S2Result struct {
	Splits []SplitResult // 按输入路径排序
	Failed []string
}

// SplitOne 对单个文件运行 S2 并写出统计文件
func SplitOne(ctx context.Context, input, outDir string, sp split.Splitter, hooks Hooks, progress io.Writer) (SplitResult, error) {
	stats, err := split.SplitFile(ctx, input, outDir, split.Options{
		Splitter: sp,
		Open:     hooks.Open,
		Progress: progress,
	})
	if err != nil {
		return SplitResult{}, err
	}
	if _, err := split.WriteStatsFile(input, outDir, stats); err != nil {
		log.Printf("Warning: %v", err)
	}
	return SplitResult{Input: input, OutDir: outDir, Stats: stats}, nil
}

// RunS2 每个输入文件独立拆分到 <outRoot>/<样本名>/，文件之间并行。
// 样本名重复时不处理任何文件。
func RunS2(ctx context.Context, files []string, outRoot string, sp split.Splitter, jobs int, hooks Hooks) (S2Result, error) {
	if err := split.CheckSampleNames(files); err != nil {
		return S2Result{}, err
	}
	results := pool.Run(ctx, files, pool.Options{Jobs: config.EffectiveJobs(jobs), OnDone: hooks.OnFile},
		func(ctx context.Context, p string) (SplitResult, error) {
			return SplitOne(ctx, p, filepath.Join(outRoot, fqio.SampleName(p)), sp, hooks, nil)
		})

	for _, r := range results {
		if r.Err != nil {
			log.Printf("Warning: %s failed: %v", filepath.Base(r.Path), r.Err)
		}
	}
	res := S2Result{Splits: pool.Succeeded(results), Failed: pool.Failed(results)}
	sort.Slice(res.Splits, func(i, j int) bool { return res.Splits[i].Input < res.Splits[j].Input })
	sort.Strings(res.Failed)
	return res, nil
}

// Result S1 → S2 串联结果
type Result struct {
	S1 S1Result
	S2 S2Result
}

// ErrNoMatchedOutput S1 未能写出任何匹配文件
var ErrNoMatchedOutput = errors.New("no S1 output files to split")

// Run 先对全部输入运行 S1（写出匹配 reads），再对 S1 输出目录中的每个 .gz 文件运行 S2。
// SkipS1 时只对已有的 S1 输出目录运行 S2。
func Run(ctx context.Context, cfg config.Pipeline, files []string, hooks Hooks) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	seps, err := split.NewSeparators(cfg.Sep1, cfg.Sep2)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if cfg.SkipS1 {
		log.Printf("=== Skipping S1, using existing output in %s ===", cfg.S1.MatchedDir)
		info, err := os.Stat(cfg.S1.MatchedDir)
		if err != nil || !info.IsDir() {
			return res, fmt.Errorf("%w: %s", config.ErrNoS1Output, cfg.S1.MatchedDir)
		}
	} else {
		// S1 输出保留原文件名，样本名冲突在 S2 之前就能确定
		if err := split.CheckSampleNames(files); err != nil {
			return res, err
		}
		log.Printf("=== Step 1: S1 pattern matching ===")
		s1, err := RunS1(ctx, cfg.S1, files, hooks)
		if err != nil {
			return res, err
		}
		res.S1 = s1
		if !s1.Write.Matched {
			return res, fmt.Errorf("%w: matched output directory %s is unavailable", ErrNoMatchedOutput, cfg.S1.MatchedDir)
		}
	}

	log.Printf("=== Step 2: S2 separator splitting ===")
	s1Files, err := filepath.Glob(filepath.Join(cfg.S1.MatchedDir, "*.gz"))
	if err != nil {
		return res, err
	}
	if len(s1Files) == 0 {
		return res, fmt.Errorf("%w: no .gz files in %s", ErrNoMatchedOutput, cfg.S1.MatchedDir)
	}
	sort.Strings(s1Files)
	log.Printf("Found %d S1 output files", len(s1Files))

	// S1 输出已是本地 gzip 文件，使用默认方式打开；OnFile 只统计 S1 阶段
	res.S2, err = RunS2(ctx, s1Files, cfg.S2Dir, split.Splitter{Separators: seps, MinLength: cfg.MinLength}, cfg.S1.Jobs, Hooks{})
	return res, err
}
