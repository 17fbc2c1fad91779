package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/report"
	"github.com/seqyuan/s1s2/internal/testfq"
)

func a(n int) string { return strings.Repeat("A", n) }

var reads = testfq.Format(
	testfq.R("paired", a(10)+"CCGCG"+a(15)+"GGTC"+a(5)),
	testfq.R("none", a(40)),
)

func TestRunS1WritesTable(t *testing.T) {
	dir := t.TempDir()
	in := testfq.WriteGz(t, dir, "lib.fq.gz", reads)

	cfg := config.DefaultS1()
	require.NoError(t, cfg.SetPatterns("CCGCG"))
	cfg.Inputs = []string{in}
	cfg.Output = filepath.Join(dir, "count", "table.tsv")
	cfg.Quiet = true
	cfg.Jobs = 1

	var out bytes.Buffer
	require.NoError(t, runS1(context.Background(), cfg, 1, time.Now(), &out))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, report.Header, lines[0])
	assert.Equal(t, "lib\t"+config.DefaultDescription+"\tCCGCG\t1\t0\t2\t50.00%\t0.00%", lines[1])
	assert.Contains(t, out.String(), lines[1])
}

func TestRunS1NoFilesWritesHeader(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultS1()
	require.NoError(t, cfg.SetPatterns("CCGCG"))
	cfg.InputPattern = filepath.Join(dir, "*gz")
	cfg.Output = filepath.Join(dir, "empty.tsv")
	cfg.Quiet = true

	require.NoError(t, runS1(context.Background(), cfg, 1, time.Now(), &bytes.Buffer{}))
	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, report.Header+"\n", string(data))
}

func TestRunS2(t *testing.T) {
	dir := t.TempDir()
	in := testfq.WriteGz(t, dir, "lib.fq.gz", reads)

	cfg := config.DefaultS2()
	cfg.Input = in
	cfg.OutDir = filepath.Join(dir, "out")
	cfg.Sep1 = "CCGCG"
	cfg.Sep2 = "GGTC"
	cfg.MinLength = 5

	var out bytes.Buffer
	require.NoError(t, runS2(context.Background(), cfg, 1, &out))
	assert.Contains(t, out.String(), "forward:")
	assert.FileExists(t, filepath.Join(cfg.OutDir, "lib_R1.fq.gz"))
	assert.FileExists(t, filepath.Join(cfg.OutDir, "lib_discarded.fq.gz"))

	cfg.Input = filepath.Join(dir, "missing.fq.gz")
	assert.Error(t, runS2(context.Background(), cfg, 1, &out))
}

func TestRunPipeline(t *testing.T) {
	dir := t.TempDir()
	in := testfq.WriteGz(t, dir, "lib.fq.gz", reads)

	cfg := config.DefaultPipeline()
	require.NoError(t, cfg.S1.SetPatterns("CCGCG"))
	cfg.S1.Inputs = []string{in}
	cfg.S1.Output = filepath.Join(dir, "table.tsv")
	cfg.S1.MatchedDir = filepath.Join(dir, "s1")
	cfg.S1.Quiet = true
	cfg.S2Dir = filepath.Join(dir, "s2")
	cfg.Sep1 = "CCGCG"
	cfg.Sep2 = "GGTC"
	cfg.MinLength = 5

	var out bytes.Buffer
	require.NoError(t, runPipeline(context.Background(), cfg, 1, time.Now(), &out))
	assert.FileExists(t, cfg.S1.Output)
	assert.FileExists(t, filepath.Join(cfg.S2Dir, "lib", "lib_R2.fq.gz"))
	assert.Contains(t, out.String(), "S2 succeeded: 1/1")

	// 只重跑 S2 时不追加 S1 输出，也不写汇总表
	require.NoError(t, os.Remove(cfg.S1.Output))
	cfg.SkipS1 = true
	out.Reset()
	require.NoError(t, runPipeline(context.Background(), cfg, 1, time.Now(), &out))
	assert.Len(t, testfq.ReadRecords(t, filepath.Join(cfg.S1.MatchedDir, "lib.fq.gz")), 1)
	assert.NoFileExists(t, cfg.S1.Output)
	assert.Contains(t, out.String(), "S2 succeeded: 1/1")
}

func TestCommandFlagErrors(t *testing.T) {
	cases := [][]string{
		{"s1"},
		{"s1", "-p", "ACGT", "-N", "0"},
		{"s1", "-p", " , "},
		{"s2", "-i", "x.fq.gz"},
		{"s2", "-i", "x.fq.gz", "-o", "out", "--sep1", "AXG"},
		{"pipeline", "-p", "ACGT", "--min-length", "-1"},
		{"pipeline"},
		{"pipeline", "--skip-s1", "--s1-dir", filepath.Join(t.TempDir(), "missing"), "-q"},
	}
	for _, args := range cases {
		cmd := rootCommand()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		assert.Error(t, cmd.Execute(), strings.Join(args, " "))
	}
}
