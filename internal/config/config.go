// Package config 汇总 S1/S2/串联流程的全部默认值与启动校验。
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// 默认值
const (
	DefaultInputPattern        = "*gz"
	DefaultCountDir            = "CountFold" // TSV 汇总目录
	DefaultMatchedDir          = "Outfastq"  // 匹配 reads 输出目录
	DefaultUnmatchedSubdir     = "Unmap"     // 未匹配 reads 子目录
	DefaultLines               = 100000
	DefaultDescription         = "未说明序列名字"
	DefaultJobsFallback        = 4
	DefaultSep1                = "GATCATGTCGGAACTGTTGCTTGTCCGACTGATC"
	DefaultSep2                = "AGATCGGAAGA"
	DefaultMinLength           = 10
	DefaultS1Dir               = "S1_Matched"
	DefaultS2Dir               = "S2_Split"
	DefaultPipelineDescription = "S1S2串联处理"
)

var (
	ErrNoPatterns   = errors.New("no valid search patterns")
	ErrBadLines     = errors.New("line budget must be a positive integer or 'all'")
	ErrBadSeparator = errors.New("separator must be a non-empty nucleotide sequence")
	ErrBadMinLength = errors.New("minimum fragment length must not be negative")
	ErrNoInput      = errors.New("no input given")
	ErrNoOutput     = errors.New("no output directory given")
	ErrNoS1Output   = errors.New("S1 output directory does not exist")
)

// LineLimit 每个文件处理的行数上限
type LineLimit struct {
	All   bool
	Lines int64
}

// ParseLines 解析 "all" 或正整数
func ParseLines(s string) (LineLimit, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return LineLimit{All: true}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return LineLimit{}, fmt.Errorf("%w: %q", ErrBadLines, s)
	}
	return LineLimit{Lines: n}, nil
}

// MaxLines 0 表示全部
func (l LineLimit) MaxLines() int64 {
	if l.All {
		return 0
	}
	return l.Lines
}

// FileTag 默认汇总文件名中的 "_m<N>" 部分
func (l LineLimit) FileTag() string {
	if l.All {
		return ""
	}
	return fmt.Sprintf("_m%d", l.Lines)
}

func (l LineLimit) String() string {
	if l.All {
		return "all"
	}
	return strconv.FormatInt(l.Lines, 10)
}

func (l LineLimit) validate() error {
	if !l.All && l.Lines <= 0 {
		return fmt.Errorf("%w: %d", ErrBadLines, l.Lines)
	}
	return nil
}

// ParsePatterns 逗号分隔，去空白并转大写，丢弃空项
func ParsePatterns(spec string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(spec, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPatterns, spec)
	}
	return out, nil
}

// DefaultJobs CPU 核数，取不到时为 DefaultJobsFallback
func DefaultJobs() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return DefaultJobsFallback
}

// EffectiveJobs 非正数时回落到 DefaultJobs
func EffectiveJobs(jobs int) int {
	if jobs <= 0 {
		return DefaultJobs()
	}
	return jobs
}

// S1 序列组合计数
type S1 struct {
	PatternSpec    string   // 原始 -p 参数，写入汇总表
	Patterns       []string // 解析后的正向序列
	Description    string
	InputPattern   string
	Inputs         []string // 非空时优先于 InputPattern
	Output         string   // TSV 路径；空则自动命名
	Lines          LineLimit
	Jobs           int
	WriteMatched   bool
	MatchedDir     string
	WriteUnmatched bool
	Pigz           string
	Quiet          bool
}

// DefaultS1 返回带默认值的 S1 配置
func DefaultS1() S1 {
	return S1{
		Description:  DefaultDescription,
		InputPattern: DefaultInputPattern,
		Lines:        LineLimit{Lines: DefaultLines},
		MatchedDir:   DefaultMatchedDir,
	}
}

// SetPatterns 解析并保存序列组合
func (c *S1) SetPatterns(spec string) error {
	ps, err := ParsePatterns(spec)
	if err != nil {
		return err
	}
	c.PatternSpec = spec
	c.Patterns = ps
	return nil
}

// Validate 启动时校验，任何输入文件打开之前调用
func (c S1) Validate() error {
	if len(c.Patterns) == 0 {
		return ErrNoPatterns
	}
	for _, p := range c.Patterns {
		if p == "" {
			return ErrNoPatterns
		}
	}
	return c.Lines.validate()
}

// UnmatchedDir 匹配输出目录下的 Unmap 子目录
func (c S1) UnmatchedDir() string {
	return filepath.Join(c.MatchedDir, DefaultUnmatchedSubdir)
}

// S2 分隔符拆分
type S2 struct {
	Input     string
	OutDir    string
	Sep1      string
	Sep2      string
	MinLength int
	Pigz      string
}

// DefaultS2 返回带默认值的 S2 配置
func DefaultS2() S2 {
	return S2{
		Sep1:      DefaultSep1,
		Sep2:      DefaultSep2,
		MinLength: DefaultMinLength,
	}
}

// Validate 启动时校验，分隔符统一转为大写
func (c *S2) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if c.OutDir == "" {
		return ErrNoOutput
	}
	return validateSplit(&c.Sep1, &c.Sep2, c.MinLength)
}

func validateSplit(sep1, sep2 *string, minLength int) error {
	for _, s := range []*string{sep1, sep2} {
		*s = strings.ToUpper(strings.TrimSpace(*s))
		if !IsNucleotide(*s) {
			return fmt.Errorf("%w: %q", ErrBadSeparator, *s)
		}
	}
	if minLength < 0 {
		return fmt.Errorf("%w: %d", ErrBadMinLength, minLength)
	}
	return nil
}

// IsNucleotide 非空且只含 ACGTN（不区分大小写）
func IsNucleotide(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}

// Pipeline S1 → S2 串联
type Pipeline struct {
	S1        S1
	SkipS1    bool // 直接使用已有的 S1 输出目录
	S2Dir     string
	Sep1      string
	Sep2      string
	MinLength int
}

// DefaultPipeline 串联流程默认值：S1 总是写出匹配 reads
func DefaultPipeline() Pipeline {
	s1 := DefaultS1()
	s1.Description = DefaultPipelineDescription
	s1.MatchedDir = DefaultS1Dir
	s1.WriteMatched = true
	return Pipeline{
		S1:        s1,
		S2Dir:     DefaultS2Dir,
		Sep1:      DefaultSep1,
		Sep2:      DefaultSep2,
		MinLength: DefaultMinLength,
	}
}

// Validate 启动时校验
func (c *Pipeline) Validate() error {
	if !c.SkipS1 {
		if err := c.S1.Validate(); err != nil {
			return err
		}
	}
	if c.S1.MatchedDir == "" || c.S2Dir == "" {
		return ErrNoOutput
	}
	c.S1.WriteMatched = true
	return validateSplit(&c.Sep1, &c.Sep2, c.MinLength)
}
