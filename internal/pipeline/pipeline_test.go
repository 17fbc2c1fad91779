package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqyuan/s1s2/internal/config"
	"github.com/seqyuan/s1s2/internal/split"
	"github.com/seqyuan/s1s2/internal/testfq"
)

func a(n int) string { return strings.Repeat("A", n) }

// sep1 = CCGCG，sep2 = GGTC
var library = []testfq.Record{
	testfq.R("paired", a(10)+"CCGCG"+a(15)+"GGTC"+a(5)),
	testfq.R("none", a(40)),
	testfq.R("short", a(3)+"CCGCG"+a(15)+"GGTC"),
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	second := testfq.WriteGz(t, dir, "b.fq.gz", "")
	first := testfq.WriteGz(t, dir, "a.fq.gz", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.gz"), 0755))

	files, err := ResolveInputs(nil, filepath.Join(dir, "*gz"))
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, files)

	files, err = ResolveInputs([]string{second, filepath.Join(dir, "missing.gz")}, "ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{second}, files)

	_, err = ResolveInputs(nil, "[")
	assert.Error(t, err)
}

func s1Config(t *testing.T, spec string) config.S1 {
	t.Helper()
	cfg := config.DefaultS1()
	require.NoError(t, cfg.SetPatterns(spec))
	cfg.Lines = config.LineLimit{All: true}
	cfg.Jobs = 2
	return cfg
}

func TestRunS1(t *testing.T) {
	dir := t.TempDir()
	good := testfq.WriteGz(t, dir, "lib.fq.gz", testfq.Format(library...))
	bad := filepath.Join(dir, "gone.fq.gz")

	var mu sync.Mutex
	done := map[string]error{}
	res, err := RunS1(context.Background(), s1Config(t, "ccgcg"), []string{good, bad}, Hooks{
		OnFile: func(p string, err error) {
			mu.Lock()
			done[p] = err
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.Equal(t, []string{bad}, res.Failed)
	require.Len(t, res.Summaries, 1)
	s := res.Summaries[0]
	assert.Equal(t, "lib", s.Sample)
	assert.EqualValues(t, 2, s.Forward)
	assert.EqualValues(t, 0, s.Reverse)
	assert.EqualValues(t, 3, s.Total)
	assert.False(t, res.Write.Matched)
}

func TestRunS1RejectsBadConfig(t *testing.T) {
	called := false
	_, err := RunS1(context.Background(), config.DefaultS1(), []string{"x.gz"}, Hooks{
		OnFile: func(string, error) { called = true },
	})
	assert.ErrorIs(t, err, config.ErrNoPatterns)
	assert.False(t, called)
}

func TestRunS1DuplicateOutputNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "x"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "y"), 0755))
	p1 := testfq.WriteGz(t, filepath.Join(dir, "x"), "lib.fq.gz", testfq.Format(library...))
	p2 := testfq.WriteGz(t, filepath.Join(dir, "y"), "lib.fq.gz", testfq.Format(library...))

	cfg := s1Config(t, "CCGCG")
	cfg.WriteMatched = true
	cfg.MatchedDir = filepath.Join(dir, "out")
	_, err := RunS1(context.Background(), cfg, []string{p1, p2}, Hooks{})
	assert.Error(t, err)

	// 不写出时允许重名
	cfg.WriteMatched = false
	res, err := RunS1(context.Background(), cfg, []string{p1, p2}, Hooks{})
	require.NoError(t, err)
	assert.Len(t, res.Summaries, 2)
}

func testSplitter(t *testing.T) split.Splitter {
	t.Helper()
	seps, err := split.NewSeparators("CCGCG", "GGTC")
	require.NoError(t, err)
	return split.Splitter{Separators: seps, MinLength: 5}
}

func TestRunS2(t *testing.T) {
	dir := t.TempDir()
	in1 := testfq.WriteGz(t, dir, "one.fq.gz", testfq.Format(library...))
	in2 := testfq.WriteGz(t, dir, "two.fastq.gz", testfq.Format(library[0]))
	missing := filepath.Join(dir, "gone.fq.gz")
	out := filepath.Join(dir, "split")

	res, err := RunS2(context.Background(), []string{in2, missing, in1}, out, testSplitter(t), 2, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, res.Failed)
	require.Len(t, res.Splits, 2)

	one := res.Splits[0]
	assert.Equal(t, in1, one.Input)
	assert.Equal(t, filepath.Join(out, "one"), one.OutDir)
	assert.EqualValues(t, 3, one.Stats.Total)
	assert.EqualValues(t, 1, one.Stats.Paired)
	assert.EqualValues(t, 2, one.Stats.Discarded)

	two := res.Splits[1]
	assert.Equal(t, filepath.Join(out, "two"), two.OutDir)
	assert.EqualValues(t, 1, two.Stats.Paired)

	assert.FileExists(t, filepath.Join(out, "one", "one_R1.fq.gz"))
	assert.FileExists(t, filepath.Join(out, "two", "two_R2.fq.gz"))
	assert.FileExists(t, filepath.Join(out, "one", "one.stats.txt"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := testfq.WriteGz(t, dir, "lib.fq.gz", testfq.Format(library...))

	cfg := config.DefaultPipeline()
	require.NoError(t, cfg.S1.SetPatterns("CCGCG"))
	cfg.S1.Lines = config.LineLimit{All: true}
	cfg.S1.Jobs = 1
	cfg.S1.MatchedDir = filepath.Join(dir, config.DefaultS1Dir)
	cfg.S2Dir = filepath.Join(dir, config.DefaultS2Dir)
	cfg.Sep1 = "ccgcg"
	cfg.Sep2 = "GGTC"
	cfg.MinLength = 5

	res, err := Run(context.Background(), cfg, []string{in}, Hooks{})
	require.NoError(t, err)
	require.Len(t, res.S1.Summaries, 1)
	assert.EqualValues(t, 2, res.S1.Summaries[0].Forward)

	matched := testfq.ReadRecords(t, filepath.Join(cfg.S1.MatchedDir, "lib.fq.gz"))
	assert.Equal(t, []testfq.Record{library[0], library[2]}, matched)

	require.Len(t, res.S2.Splits, 1)
	st := res.S2.Splits[0].Stats
	assert.EqualValues(t, 2, st.Total)
	assert.EqualValues(t, 1, st.Paired)
	assert.EqualValues(t, 1, st.Discarded)

	r1 := testfq.ReadRecords(t, filepath.Join(cfg.S2Dir, "lib", "lib_R1.fq.gz"))
	require.Len(t, r1, 1)
	assert.Equal(t, "@paired/1", r1[0].ID)
	assert.Equal(t, a(10), r1[0].Seq)
}

func TestRunNoMatches(t *testing.T) {
	dir := t.TempDir()
	in := testfq.WriteGz(t, dir, "lib.fq.gz", testfq.Format(library[1]))

	cfg := config.DefaultPipeline()
	require.NoError(t, cfg.S1.SetPatterns("CCGCG"))
	cfg.S1.MatchedDir = filepath.Join(dir, "s1")
	cfg.S2Dir = filepath.Join(dir, "s2")

	_, err := Run(context.Background(), cfg, []string{in}, Hooks{})
	assert.ErrorIs(t, err, ErrNoMatchedOutput)
}

func TestRunS2RejectsSharedSampleNames(t *testing.T) {
	dir := t.TempDir()
	in1 := testfq.WriteGz(t, dir, "lib.fq.gz", testfq.Format(library...))
	in2 := testfq.WriteGz(t, dir, "lib.fastq.gz", testfq.Format(library...))
	out := filepath.Join(dir, "split")

	_, err := RunS2(context.Background(), []string{in1, in2}, out, testSplitter(t), 2, Hooks{})
	assert.ErrorIs(t, err, split.ErrSampleCollision)
	assert.NoDirExists(t, filepath.Join(out, "lib"))
}

func pipelineConfig(t *testing.T, dir string) config.Pipeline {
	t.Helper()
	cfg := config.DefaultPipeline()
	require.NoError(t, cfg.S1.SetPatterns("CCGCG"))
	cfg.S1.Lines = config.LineLimit{All: true}
	cfg.S1.Jobs = 2
	cfg.S1.MatchedDir = filepath.Join(dir, config.DefaultS1Dir)
	cfg.S2Dir = filepath.Join(dir, config.DefaultS2Dir)
	cfg.Sep1 = "CCGCG"
	cfg.Sep2 = "GGTC"
	cfg.MinLength = 5
	return cfg
}

func TestRunRejectsSharedSampleNamesBeforeS1(t *testing.T) {
	dir := t.TempDir()
	in1 := testfq.WriteGz(t, dir, "lib.fq.gz", testfq.Format(library...))
	in2 := testfq.WriteGz(t, dir, "lib.fastq.gz", testfq.Format(library...))
	cfg := pipelineConfig(t, dir)

	_, err := Run(context.Background(), cfg, []string{in1, in2}, Hooks{})
	assert.ErrorIs(t, err, split.ErrSampleCollision)
	assert.NoDirExists(t, cfg.S1.MatchedDir)
}

func TestRunSkipS1(t *testing.T) {
	dir := t.TempDir()
	cfg := pipelineConfig(t, dir)
	cfg.SkipS1 = true
	// S1 不运行时不需要序列组合
	cfg.S1.Patterns = nil

	_, err := Run(context.Background(), cfg, nil, Hooks{})
	assert.ErrorIs(t, err, config.ErrNoS1Output)

	require.NoError(t, os.MkdirAll(cfg.S1.MatchedDir, 0755))
	testfq.WriteGz(t, cfg.S1.MatchedDir, "lib.fq.gz", testfq.Format(library[0], library[2]))

	res, err := Run(context.Background(), cfg, nil, Hooks{})
	require.NoError(t, err)
	assert.Empty(t, res.S1.Summaries)
	require.Len(t, res.S2.Splits, 1)
	assert.EqualValues(t, 1, res.S2.Splits[0].Stats.Paired)

	// S1 输出未被改写
	assert.Len(t, testfq.ReadRecords(t, filepath.Join(cfg.S1.MatchedDir, "lib.fq.gz")), 2)
}
