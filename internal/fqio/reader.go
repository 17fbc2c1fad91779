package fqio

import (
	"bufio"
	"bytes"
	"io"
	"log"

	"github.com/seqyuan/annogene/io/fastq"
)

// Reader 按4行一组读取FASTQ记录。
//
// 首行不以 '@' 开头、第三行不以 '+' 开头、或序列与质量长度不一致的组
// 被跳过；文件末尾不足4行的残组被静默忽略。ID1/ID2 保留原始的 '@'/'+' 行。
type Reader struct {
	br      *bufio.Reader
	limited bool
	budget  int64 // limited 时允许读取的行数，已向下取整到4的倍数
	lines   int64
	seq     fastq.Sequence
	skipped int64
	err     error
	done    bool

	// OnMalformed 每跳过一组格式错误的记录调用一次，line 为该组首行行号（从1开始）
	OnMalformed func(line int64, reason string)
}

// NewReader maxLines <= 0 表示读取全部行
func NewReader(r io.Reader, maxLines int64) *Reader {
	rd := &Reader{
		br: bufio.NewReaderSize(r, 1024*1024),
		OnMalformed: func(line int64, reason string) {
			log.Printf("Warning: skipping malformed record near line %d: %s", line, reason)
		},
	}
	if maxLines > 0 {
		rd.limited = true
		rd.budget = maxLines - maxLines%4
	}
	return rd
}

// Next 读取下一条完整记录
func (r *Reader) Next() bool {
	for !r.done {
		start := r.lines + 1
		var group [4][]byte
		for i := range group {
			line, ok := r.readLine()
			if !ok {
				r.done = true
				return false
			}
			group[i] = line
		}

		if reason := malformed(group); reason != "" {
			r.skipped++
			if r.OnMalformed != nil {
				r.OnMalformed(start, reason)
			}
			continue
		}

		r.seq = fastq.Sequence{
			ID1:     group[0],
			Letters: group[1],
			ID2:     group[2],
			Quality: group[3],
		}
		return true
	}
	return false
}

// Seq 当前记录；切片在下一次 Next 后仍然有效
func (r *Reader) Seq() fastq.Sequence { return r.seq }

// Err 返回读取过程中遇到的第一个非 EOF 错误
func (r *Reader) Err() error { return r.err }

// Skipped 跳过的格式错误记录数
func (r *Reader) Skipped() int64 { return r.skipped }

// Lines 已读取的行数
func (r *Reader) Lines() int64 { return r.lines }

func (r *Reader) readLine() ([]byte, bool) {
	if r.limited && r.lines >= r.budget {
		return nil, false
	}
	line, err := r.br.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			r.err = err
			return nil, false
		}
		if len(line) == 0 {
			return nil, false
		}
	}
	r.lines++
	line = bytes.TrimRight(line, "\r\n")
	return line, true
}

func malformed(group [4][]byte) string {
	switch {
	case len(group[0]) == 0 || group[0][0] != '@':
		return "id line does not start with @"
	case len(group[2]) == 0 || group[2][0] != '+':
		return "separator line does not start with +"
	case len(group[1]) != len(group[3]):
		return "sequence and quality lengths differ"
	}
	return ""
}
