// Package pipeline 组织 S1 计数与 S2 拆分的批量运行。
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/seqyuan/s1s2/internal/classify"
	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/fqio"
	"github.com/seqyuan/s1s2/internal/pool"
)

// Hooks 可选的运行时回调
type Hooks struct {
	Open   fqio.Opener                  // 自定义输入打开方式（如 pigz）
	OnFile func(path string, err error) // 每个文件结束时调用
}

// ResolveInputs 显式文件列表优先，否则按通配符查找；目录被跳过
func ResolveInputs(inputs []string, pattern string) ([]string, error) {
	candidates := inputs
	if len(candidates) == 0 {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			log.Printf("Warning: no files match pattern %q", pattern)
		}
		candidates = matches
	}

	var files []string
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			log.Printf("Warning: %q is not a valid file, skipped", p)
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// S1Result S1 运行结果
type S1Result struct {
	Summaries []classify.Summary // 已按样本名排序
	Failed    []string
	Write     classify.WritePolicy
}

// RunS1 并行统计全部输入文件。配置在任何文件打开之前校验。
func RunS1(ctx context.Context, cfg config.S1, files []string, hooks Hooks) (S1Result, error) {
	if err := cfg.Validate(); err != nil {
		return S1Result{}, err
	}
	if cfg.WriteMatched {
		if err := classify.CheckOutputNames(files); err != nil {
			return S1Result{}, err
		}
	}

	wp := classify.PrepareWritePolicy(cfg.WriteMatched, cfg.WriteUnmatched, cfg.MatchedDir, cfg.UnmatchedDir())
	opts := classify.Options{
		Patterns:    classify.NewPatterns(cfg.PatternSpec, cfg.Patterns),
		Description: cfg.Description,
		MaxLines:    cfg.Lines.MaxLines(),
		Write:       wp,
		Open:        hooks.Open,
	}

	jobs := config.EffectiveJobs(cfg.Jobs)
	log.Printf("Using %d parallel jobs for %d files", jobs, len(files))

	results := pool.Run(ctx, files, pool.Options{Jobs: jobs, OnDone: hooks.OnFile},
		func(ctx context.Context, p string) (classify.Summary, error) {
			return classify.ClassifyFile(ctx, p, opts)
		})

	for _, r := range results {
		if r.Err != nil {
			log.Printf("Warning: error while processing file %q: %v", r.Path, r.Err)
		}
	}
	res := S1Result{
		Summaries: pool.Succeeded(results),
		Failed:    pool.Failed(results),
		Write:     wp,
	}
	classify.SortSummaries(res.Summaries)
	sort.Strings(res.Failed)
	return res, nil
}
