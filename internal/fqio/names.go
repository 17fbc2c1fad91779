package fqio

import (
	"path/filepath"
	"strings"
)

// Basename 输入文件名（含扩展名），匹配/未匹配输出沿用该名字
func Basename(filePath string) string {
	return filepath.Base(filePath)
}

// SampleName 去掉 .gz 后再去掉 .fq / .fastq
func SampleName(filePath string) string {
	name := filepath.Base(filePath)
	name = strings.TrimSuffix(name, ".gz")
	if strings.HasSuffix(name, ".fq") {
		return strings.TrimSuffix(name, ".fq")
	}
	return strings.TrimSuffix(name, ".fastq")
}
