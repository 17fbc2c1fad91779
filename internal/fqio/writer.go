package fqio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/pgzip"
	"github.com/seqyuan/annogene/io/fastq"
)

// Writer gzip 压缩的FASTQ输出
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	gz      *pgzip.Writer
	writer  fastq.Writer
	written int64
}

// Create 创建（截断）gzip 输出文件
func Create(filePath string) (*Writer, error) {
	// 创建输出目录
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", filePath, err)
	}

	gz := pgzip.NewWriter(file)
	return &Writer{
		file:   file,
		gz:     gz,
		writer: fastq.NewWriter(gz),
	}, nil
}

func (w *Writer) Write(seq fastq.Sequence) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.writer.Write(seq); err != nil {
		return fmt.Errorf("failed to write record to %s: %w", w.file.Name(), err)
	}
	w.written++
	return nil
}

// Written 已写入的记录数
func (w *Writer) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Name 输出文件路径
func (w *Writer) Name() string { return w.file.Name() }

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.gz.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to finish gzip stream %s: %w", w.file.Name(), err)
	}
	return w.file.Close()
}
