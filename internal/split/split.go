package split

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seqyuan/annogene/io/fastq"

	"github.com/seqyuan/s1s2/internal/fqio"
)

// 每处理多少条 reads 输出一次进度
const progressEvery = 10000

// ErrSampleCollision 多个输入对应同一个样本名
var ErrSampleCollision = errors.New("input files share a sample name")

// Splitter 切分单条 read
type Splitter struct {
	Separators Separators
	MinLength  int
}

// Split 返回 R1/R2；ok 为 false 表示该 read 应整条丢弃
func (sp Splitter) Split(rec fastq.Sequence) (r1, r2 fastq.Sequence, c Candidate, ok bool) {
	c, found := sp.Separators.Best(rec.Letters)
	if !found {
		return r1, r2, c, false
	}
	if c.Sep1Start < sp.MinLength || c.Span() < sp.MinLength {
		return r1, r2, c, false
	}

	id := readID(rec.ID1)
	r1 = fastq.Sequence{
		ID1:     append(append([]byte{}, id...), "/1"...),
		Letters: rec.Letters[:c.Sep1Start],
		ID2:     []byte("+"),
		Quality: rec.Quality[:c.Sep1Start],
	}
	r2 = fastq.Sequence{
		ID1:     append(append([]byte{}, id...), "/2"...),
		Letters: rec.Letters[c.Sep1End:c.Sep2Start],
		ID2:     []byte("+"),
		Quality: rec.Quality[c.Sep1End:c.Sep2Start],
	}
	return r1, r2, c, true
}

// readID 标识行的第一个空白分隔字段（含 '@'）
func readID(header []byte) []byte {
	if f := bytes.Fields(header); len(f) > 0 {
		return f[0]
	}
	return header
}

// Stats 单个文件的拆分统计
type Stats struct {
	Total         int64
	Paired        int64
	Discarded     int64
	Skipped       int64 // 格式错误被跳过的记录组
	ByOrientation [numOrientations]int64
}

// PairedRate 配对成功率（百分比），无 reads 时为 0
func (s Stats) PairedRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Paired) / float64(s.Total) * 100
}

// Outputs 一个输入文件对应的三个输出
type Outputs struct {
	R1, R2, Discarded string
}

// OutputPaths <outDir>/<base>_R1.fq.gz 等
func OutputPaths(input, outDir string) Outputs {
	base := fqio.SampleName(input)
	return Outputs{
		R1:        filepath.Join(outDir, base+"_R1.fq.gz"),
		R2:        filepath.Join(outDir, base+"_R2.fq.gz"),
		Discarded: filepath.Join(outDir, base+"_discarded.fq.gz"),
	}
}

// Options 单个文件的拆分参数
type Options struct {
	Splitter Splitter
	Open     fqio.Opener // nil 时使用 fqio.Open
	Progress io.Writer   // nil 时不输出进度
}

// SplitFile 处理一个输入文件；任何读写错误都使本次调用失败，已创建的输出文件被删除
func SplitFile(ctx context.Context, input, outDir string, opts Options) (stats Stats, err error) {
	open := opts.Open
	if open == nil {
		open = fqio.Open
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	// 最先注册，在输入和输出都关闭之后执行
	var created []string
	defer func() {
		if err == nil {
			return
		}
		for _, p := range created {
			os.Remove(p)
		}
	}()

	in, err := open(input)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to read %s: %w", input, cerr)
		}
	}()

	paths := OutputPaths(input, outDir)
	var writers []*fqio.Writer
	defer func() {
		for _, w := range writers {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()
	for _, p := range []string{paths.R1, paths.R2, paths.Discarded} {
		w, err := fqio.Create(p)
		if err != nil {
			return stats, err
		}
		created = append(created, p)
		writers = append(writers, w)
	}
	r1w, r2w, dw := writers[0], writers[1], writers[2]

	done := ctx.Done()
	r := fqio.NewReader(in, 0)
	for r.Next() {
		select {
		case <-done:
			return stats, ctx.Err()
		default:
		}

		rec := r.Seq()
		stats.Total++

		a, b, c, ok := opts.Splitter.Split(rec)
		if ok {
			// R1 与 R2 同时写入，保证按位置配对
			if err := r1w.Write(a); err != nil {
				return stats, err
			}
			if err := r2w.Write(b); err != nil {
				return stats, err
			}
			stats.Paired++
			stats.ByOrientation[c.Orientation]++
		} else {
			if err := dw.Write(rec); err != nil {
				return stats, err
			}
			stats.Discarded++
		}

		if stats.Total%progressEvery == 0 {
			fmt.Fprintf(progress, "Processed %d reads, paired %d...\n", stats.Total, stats.Paired)
		}
	}
	stats.Skipped = r.Skipped()
	if err := r.Err(); err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", input, err)
	}
	return stats, nil
}

// CheckSampleNames 不同输入的样本名相同时会写入同一组输出文件，拆分前拒绝
func CheckSampleNames(paths []string) error {
	seen := make(map[string][]string)
	for _, p := range paths {
		name := fqio.SampleName(p)
		seen[name] = append(seen[name], p)
	}
	var dups []string
	for name, ps := range seen {
		if len(ps) > 1 {
			dups = append(dups, fmt.Sprintf("%s (%s)", name, strings.Join(ps, ", ")))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return fmt.Errorf("%w: %s", ErrSampleCollision, strings.Join(dups, "; "))
}

// WriteStatsFile 把统计写到 <outDir>/<base>.stats.txt
func WriteStatsFile(input, outDir string, stats Stats) (string, error) {
	p := filepath.Join(outDir, fqio.SampleName(input)+".stats.txt")
	content := fmt.Sprintf("Total reads: %d\nPaired reads: %d\nDiscarded reads: %d\nSkipped malformed records: %d\nPaired rate: %.2f%%\n",
		stats.Total, stats.Paired, stats.Discarded, stats.Skipped, stats.PairedRate())
	for _, o := range Orientations() {
		content += fmt.Sprintf("%s: %d\n", o, stats.ByOrientation[o])
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return p, fmt.Errorf("failed to write stats file: %w", err)
	}
	return p, nil
}
