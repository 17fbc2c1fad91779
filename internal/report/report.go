// Package report 渲染 S1 汇总表。
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/seqyuan/s1s2/internal/classify"
)

// Header 汇总表表头
const Header = "样本\t序列描述\t查询序列组合\t全正向匹配Reads数\t" +
	"全反向互补匹配Reads数\t总处理Reads数\t全正向匹配比例(%)\t全反向互补匹配比例(%)"

// 默认文件名中序列摘要的最大长度
const maxSummaryLen = 40

// Lines 表头加排序后的数据行
func Lines(summaries []classify.Summary) []string {
	sorted := append([]classify.Summary(nil), summaries...)
	classify.SortSummaries(sorted)

	lines := make([]string, 0, len(sorted)+1)
	lines = append(lines, Header)
	for _, s := range sorted {
		lines = append(lines, strings.Join(s.Fields(), "\t"))
	}
	return lines
}

// Write 写出 TSV；没有结果时只有表头
func Write(w io.Writer, summaries []classify.Summary) error {
	for _, line := range Lines(summaries) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile 写出 TSV 文件，echo 非空时同时输出表格
func WriteFile(path string, summaries []classify.Summary, echo io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create TSV output directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create TSV output file %s: %w", path, err)
	}

	var w io.Writer = f
	if echo != nil {
		w = io.MultiWriter(f, echo)
	}
	if err := Write(w, summaries); err != nil {
		f.Close()
		return fmt.Errorf("failed to write TSV output file %s: %w", path, err)
	}
	return f.Close()
}

// ResolvePath 确定汇总文件路径。
// output 为空时自动命名 <countDir>/<时间戳>_<序列摘要><lineTag>.tsv；
// 只给文件名时放到 countDir 下。
func ResolvePath(output, countDir string, now time.Time, patterns []string, lineTag string) string {
	if output == "" {
		name := fmt.Sprintf("%s_%s%s.tsv", now.Format("20060102_150405"), patternSummary(patterns), lineTag)
		return filepath.Join(countDir, name)
	}
	if filepath.Dir(output) == "." {
		return filepath.Join(countDir, output)
	}
	return output
}

func patternSummary(patterns []string) string {
	joined := strings.Join(patterns, "_")
	var b strings.Builder
	for _, r := range joined {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > maxSummaryLen {
		s = s[:maxSummaryLen] + "_etc"
	}
	if s == "" {
		s = "patterns"
	}
	return s
}
