package classify

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/seqyuan/annogene/io/fastq"

	"github.com/seqyuan/s1s2/internal/fqio"
)

// 同一目标文件的合并操作串行执行
var mergeLocks sync.Map

// sink 把一个 worker 的输出先写入独占的临时文件，文件处理成功后再追加到目标文件。
// 写入失败只关闭该 sink，计数继续。
type sink struct {
	target string
	w      *fqio.Writer
	failed bool
}

func newSink(dir, name string) *sink {
	return &sink{target: filepath.Join(dir, name)}
}

func (s *sink) write(seq fastq.Sequence) {
	if s.failed {
		return
	}
	if s.w == nil {
		tmp, err := os.CreateTemp(filepath.Dir(s.target), "."+filepath.Base(s.target)+".*.tmp")
		if err != nil {
			s.fail(err)
			return
		}
		tmp.Close()
		if s.w, err = fqio.Create(tmp.Name()); err != nil {
			os.Remove(tmp.Name())
			s.fail(err)
			return
		}
	}
	if err := s.w.Write(seq); err != nil {
		s.fail(err)
	}
}

func (s *sink) fail(err error) {
	log.Printf("Warning: disabling output %s: %v", s.target, err)
	s.failed = true
	s.discard()
}

// commit 追加临时文件内容到目标文件（gzip member 拼接）
func (s *sink) commit() error {
	if s.w == nil || s.failed {
		return nil
	}
	tmpName := s.w.Name()
	n := s.w.Written()
	defer os.Remove(tmpName)
	if err := s.w.Close(); err != nil {
		s.w = nil
		return err
	}
	s.w = nil

	mu, _ := mergeLocks.LoadOrStore(s.target, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	src, err := os.Open(tmpName)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(s.target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", s.target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to append to %s: %w", s.target, err)
	}
	if err := dst.Close(); err != nil {
		return err
	}
	log.Printf("Appended %d records to %s", n, s.target)
	return nil
}

// discard 丢弃未提交的临时文件
func (s *sink) discard() {
	if s.w == nil {
		return
	}
	tmpName := s.w.Name()
	s.w.Close()
	os.Remove(tmpName)
	s.w = nil
}
