// Package testfq 为测试构造与读取 gzip FASTQ 文件。
package testfq

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
)

// Record 一条测试用记录
type Record struct {
	ID, Seq, Plus, Qual string
}

// R 生成质量全为 'I' 的记录
func R(id, seq string) Record {
	return Record{ID: "@" + id, Seq: seq, Plus: "+", Qual: strings.Repeat("I", len(seq))}
}

// Format 4行文本
func Format(recs ...Record) string {
	var b strings.Builder
	for _, r := range recs {
		fmt.Fprintf(&b, "%s\n%s\n%s\n%s\n", r.ID, r.Seq, r.Plus, r.Qual)
	}
	return b.String()
}

// WriteGz 写入 gzip 文件并返回路径
func WriteGz(t testing.TB, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := pgzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

// ReadGz 解压读取整个文件（支持多 member）
func ReadGz(t testing.TB, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := pgzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

// Parse 把4行文本拆成记录，忽略末尾空行
func Parse(t testing.TB, text string) []Record {
	t.Helper()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if len(lines)%4 != 0 {
		t.Fatalf("fastq text has %d lines, not a multiple of 4", len(lines))
	}
	var recs []Record
	for i := 0; i < len(lines); i += 4 {
		recs = append(recs, Record{ID: lines[i], Seq: lines[i+1], Plus: lines[i+2], Qual: lines[i+3]})
	}
	return recs
}

// ReadRecords 读取 gzip FASTQ 文件中的全部记录
func ReadRecords(t testing.TB, p string) []Record {
	t.Helper()
	return Parse(t, ReadGz(t, p))
}
