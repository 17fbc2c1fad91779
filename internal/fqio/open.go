package fqio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/shenwei356/xopen"
)

// Opener 打开一个输入流；默认实现为 Open，外部解压（pigz）可替换
type Opener func(path string) (io.ReadCloser, error)

// Open 打开普通文件或压缩文件，"-" 表示标准输入。
// .gz 后缀的文件必须是 gzip 格式，否则返回错误。
func Open(filePath string) (io.ReadCloser, error) {
	if filePath != "-" {
		info, err := os.Stat(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("failed to open file %s: is a directory", filePath)
		}
		// 空文件按空流处理
		if info.Size() == 0 {
			return io.NopCloser(strings.NewReader("")), nil
		}
	}

	if strings.HasSuffix(filePath, ".gz") {
		return openGzip(filePath)
	}

	r, err := xopen.Ropen(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return r, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func openGzip(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	// gzip 头不合法时直接失败
	gz, err := pgzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip file %s: %w", filePath, err)
	}
	return &gzipFile{Reader: gz, file: file}, nil
}
