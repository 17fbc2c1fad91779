package classify

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/seqyuan/s1s2/internal/fqio"
)

// WritePolicy 匹配/未匹配 reads 的输出开关
type WritePolicy struct {
	Matched      bool
	MatchedDir   string
	Unmatched    bool
	UnmatchedDir string
}

// PrepareWritePolicy 创建输出目录；目录不可用时降级为只计数。
// 未匹配输出仅在匹配输出开启时生效。
func PrepareWritePolicy(writeMatched, writeUnmatched bool, matchedDir, unmatchedDir string) WritePolicy {
	var wp WritePolicy
	if !writeMatched {
		if writeUnmatched {
			log.Printf("Warning: --write-unmatched-reads only takes effect together with --write-matching-reads; unmatched reads will not be written")
		}
		return wp
	}

	if err := os.MkdirAll(matchedDir, 0755); err != nil {
		log.Printf("Error: cannot create FASTQ output directory %s: %v", matchedDir, err)
		log.Printf("Warning: no FASTQ records (matched or unmatched) will be written")
		return wp
	}
	wp.Matched = true
	wp.MatchedDir = matchedDir
	log.Printf("Matched FASTQ records will be written to %s", matchedDir)

	if writeUnmatched {
		if err := os.MkdirAll(unmatchedDir, 0755); err != nil {
			log.Printf("Error: cannot create unmatched output directory %s: %v", unmatchedDir, err)
			log.Printf("Warning: unmatched FASTQ records will not be written")
			return wp
		}
		wp.Unmatched = true
		wp.UnmatchedDir = unmatchedDir
		log.Printf("Unmatched FASTQ records will be written to %s", unmatchedDir)
	}
	return wp
}

// Options 单个文件的分类参数
type Options struct {
	Patterns    Patterns
	Description string
	MaxLines    int64 // 0 表示全部行
	Write       WritePolicy
	Open        fqio.Opener // nil 时使用 fqio.Open
}

// ClassifyFile 统计一个文件中全部正向/全部反向互补序列共现的 reads。
// 读取失败返回错误，匹配输出的写入失败只记录警告。
func ClassifyFile(ctx context.Context, path string, opts Options) (Summary, error) {
	open := opts.Open
	if open == nil {
		open = fqio.Open
	}

	sum := Summary{
		Sample:      fqio.SampleName(path),
		Description: opts.Description,
		PatternSpec: opts.Patterns.Spec,
	}

	in, err := open(path)
	if err != nil {
		return Summary{}, err
	}

	var matched, unmatched *sink
	if opts.Write.Matched {
		matched = newSink(opts.Write.MatchedDir, fqio.Basename(path))
	}
	if opts.Write.Matched && opts.Write.Unmatched {
		unmatched = newSink(opts.Write.UnmatchedDir, fqio.Basename(path))
	}

	var readErr error
	done := ctx.Done()
	r := fqio.NewReader(in, opts.MaxLines)
	for r.Next() {
		select {
		case <-done:
			readErr = ctx.Err()
		default:
		}
		if readErr != nil {
			break
		}
		seq := r.Seq()
		sum.Total++

		fwd, rc := opts.Patterns.Match(seq.Letters)
		if fwd {
			sum.Forward++
		}
		if rc {
			sum.Reverse++
		}

		switch {
		case fwd || rc:
			if matched != nil {
				matched.write(seq)
			}
		case unmatched != nil:
			unmatched.write(seq)
		}
	}

	if readErr == nil {
		readErr = r.Err()
	}
	if err := in.Close(); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		for _, s := range []*sink{matched, unmatched} {
			if s != nil {
				s.discard()
			}
		}
		return Summary{}, fmt.Errorf("failed to read %s: %w", path, readErr)
	}

	for _, s := range []*sink{matched, unmatched} {
		if s == nil {
			continue
		}
		if err := s.commit(); err != nil {
			log.Printf("Warning: failed to write FASTQ records to %s: %v", s.target, err)
		}
	}
	return sum, nil
}

// CheckOutputNames 开启写出时，不同输入不能落到同一个输出文件
func CheckOutputNames(paths []string) error {
	seen := make(map[string][]string)
	for _, p := range paths {
		b := fqio.Basename(p)
		seen[b] = append(seen[b], p)
	}
	var dups []string
	for b, ps := range seen {
		if len(ps) > 1 {
			dups = append(dups, fmt.Sprintf("%s (%s)", b, strings.Join(ps, ", ")))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return fmt.Errorf("input files share output names: %s", strings.Join(dups, "; "))
}

// SortSummaries 按样本名升序；样本名相同时按整行排序，结果与完成顺序无关
func SortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Sample != s[j].Sample {
			return s[i].Sample < s[j].Sample
		}
		return strings.Join(s[i].Fields(), "\t") < strings.Join(s[j].Fields(), "\t")
	})
}
