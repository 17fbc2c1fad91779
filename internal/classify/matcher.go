// Package classify 统计 reads 中全部正向序列或全部反向互补序列的共现情况（S1）。
package classify

import (
	"bytes"

	"github.com/seqyuan/s1s2/internal/nucl"
)

// Patterns 正向序列及其反向互补，每次运行计算一次
type Patterns struct {
	Spec    string // 用户给出的原始组合字符串
	Forward [][]byte
	Reverse [][]byte
}

// NewPatterns forward 应为已转大写的非空序列
func NewPatterns(spec string, forward []string) Patterns {
	p := Patterns{Spec: spec}
	for _, f := range forward {
		p.Forward = append(p.Forward, []byte(f))
		p.Reverse = append(p.Reverse, nucl.ReverseComplementBytes([]byte(f)))
	}
	return p
}

// Match 两个判断相互独立，可能同时为真
func (p Patterns) Match(seq []byte) (fwd, rc bool) {
	return containsAll(seq, p.Forward), containsAll(seq, p.Reverse)
}

func containsAll(seq []byte, patterns [][]byte) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, pat := range patterns {
		if !bytes.Contains(seq, pat) {
			return false
		}
	}
	return true
}
