// Package split 按两个分隔符把一条 read 切成 R1/R2 配对片段（S2）。
package split

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/seqyuan/s1s2/internal/nucl"
)

// Orientation 分隔符组合方向
type Orientation int

const (
	Forward    Orientation = iota // sep1 + sep2
	Reverse                       // rc(sep1) + rc(sep2)
	MixedFwdRC                    // sep1 + rc(sep2)
	MixedRCFwd                    // rc(sep1) + sep2
	numOrientations
)

var orientationNames = [numOrientations]string{"forward", "reverse", "mixed_fwd_rc", "mixed_rc_fwd"}

func (o Orientation) String() string {
	if o < 0 || o >= numOrientations {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Orientations 按扫描顺序列出全部方向
func Orientations() []Orientation {
	return []Orientation{Forward, Reverse, MixedFwdRC, MixedRCFwd}
}

// Separators 一次运行内固定的分隔符对及其反向互补
type Separators struct {
	Sep1, Sep2     []byte
	Sep1RC, Sep2RC []byte
}

// NewSeparators 分隔符转为大写，不能为空
func NewSeparators(sep1, sep2 string) (Separators, error) {
	sep1 = strings.ToUpper(sep1)
	sep2 = strings.ToUpper(sep2)
	if sep1 == "" || sep2 == "" {
		return Separators{}, fmt.Errorf("separators must not be empty")
	}
	return Separators{
		Sep1:   []byte(sep1),
		Sep2:   []byte(sep2),
		Sep1RC: nucl.ReverseComplementBytes([]byte(sep1)),
		Sep2RC: nucl.ReverseComplementBytes([]byte(sep2)),
	}, nil
}

func (s Separators) pair(o Orientation) (first, second []byte) {
	switch o {
	case Forward:
		return s.Sep1, s.Sep2
	case Reverse:
		return s.Sep1RC, s.Sep2RC
	case MixedFwdRC:
		return s.Sep1, s.Sep2RC
	default:
		return s.Sep1RC, s.Sep2
	}
}

// Candidate 一次扫描找到的分隔符位置
type Candidate struct {
	Sep1Start   int
	Sep1End     int
	Sep2Start   int
	Orientation Orientation
}

// Span R2 长度
func (c Candidate) Span() int { return c.Sep2Start - c.Sep1End }

// Candidates 依次尝试四种方向：取最左的 sep1，再从其末端起找第一个 sep2
func (s Separators) Candidates(seq []byte) []Candidate {
	var out []Candidate
	for _, o := range Orientations() {
		first, second := s.pair(o)
		start := bytes.Index(seq, first)
		if start < 0 {
			continue
		}
		end := start + len(first)
		off := bytes.Index(seq[end:], second)
		if off < 0 {
			continue
		}
		out = append(out, Candidate{Sep1Start: start, Sep1End: end, Sep2Start: end + off, Orientation: o})
	}
	return out
}

// Best R2 最短的候选；长度相同时取扫描顺序靠前者
func (s Separators) Best(seq []byte) (Candidate, bool) {
	cands := s.Candidates(seq)
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Span() < best.Span() {
			best = c
		}
	}
	return best, true
}
