package classify

import (
	"fmt"
	"strconv"
)

// Summary 单个输入文件的统计，由其 worker 生成后不再修改
type Summary struct {
	Sample      string
	Description string
	PatternSpec string
	Forward     int64 // 全部正向序列共现的 reads
	Reverse     int64 // 全部反向互补序列共现的 reads
	Total       int64
}

// Percent count/total*100 保留两位小数；total 为 0 时为 "N/A"
func Percent(count, total int64) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(count)/float64(total)*100)
}

func (s Summary) ForwardPercent() string { return Percent(s.Forward, s.Total) }

func (s Summary) ReversePercent() string { return Percent(s.Reverse, s.Total) }

// Fields 汇总表的一行
func (s Summary) Fields() []string {
	return []string{
		s.Sample,
		s.Description,
		s.PatternSpec,
		strconv.FormatInt(s.Forward, 10),
		strconv.FormatInt(s.Reverse, 10),
		strconv.FormatInt(s.Total, 10),
		s.ForwardPercent(),
		s.ReversePercent(),
	}
}
