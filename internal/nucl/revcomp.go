// Package nucl 提供核苷酸序列的基础运算。
package nucl

// 互补碱基表，保留大小写；表外字符原样保留
var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'G': 'C', 'C': 'G',
		'a': 't', 't': 'a', 'g': 'c', 'c': 'g',
		'N': 'N', 'n': 'n',
	}
	for b, c := range pairs {
		complement[b] = c
	}
}

// ReverseComplement 返回反向互补序列
func ReverseComplement(seq string) string {
	return string(ReverseComplementBytes([]byte(seq)))
}

// ReverseComplementBytes 返回新分配的反向互补序列，不修改输入
func ReverseComplementBytes(seq []byte) []byte {
	result := make([]byte, len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		result[len(seq)-1-i] = complement[seq[i]]
	}
	return result
}
