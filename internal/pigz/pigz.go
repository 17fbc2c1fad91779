// Package pigz 通过外部 pigz 进程并行解压 gzip 输入。
package pigz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/seqyuan/s1s2/internal/fqio"
)

// 构建 pigz 解压参数，输出到标准输出
func decompressArgs(threads int, filePath string) []string {
	if threads < 1 {
		threads = 1
	}
	return []string{"-d", "-c", "-p", strconv.Itoa(threads), filePath}
}

// Opener 返回使用 pigz 解压 .gz 输入的 fqio.Opener；其它输入交给 fqio.Open
func Opener(ctx context.Context, pigzPath string, threads int) (fqio.Opener, error) {
	// 检查pigz路径是否存在
	if _, err := os.Stat(pigzPath); err != nil {
		return nil, fmt.Errorf("pigz not found at path: %s", pigzPath)
	}
	return func(filePath string) (io.ReadCloser, error) {
		if !strings.HasSuffix(filePath, ".gz") {
			return fqio.Open(filePath)
		}
		return Open(ctx, pigzPath, threads, filePath)
	}, nil
}

// Open 启动 pigz 进程并返回其标准输出。
// 读到 EOF 之前关闭会终止进程；读完后关闭会返回 pigz 的退出错误。
func Open(ctx context.Context, pigzPath string, threads int, filePath string) (io.ReadCloser, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, pigzPath, decompressArgs(threads, filePath)...)
	s := &stream{cmd: cmd, cancel: cancel, path: filePath}
	cmd.Stderr = &s.stderr

	out, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to decompress %s: %w", filePath, err)
	}
	s.out = out
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to decompress %s: %w", filePath, err)
	}
	return s, nil
}

type stream struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	cancel context.CancelFunc
	stderr bytes.Buffer
	path   string
	eof    bool
}

func (s *stream) Read(p []byte) (int, error) {
	n, err := s.out.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

func (s *stream) Close() error {
	if !s.eof {
		s.cancel()
	}
	err := s.cmd.Wait()
	s.cancel()
	if !s.eof {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w: %s", s.path, err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}
