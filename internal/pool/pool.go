// Package pool 以固定数量的 worker 并行处理互不相关的输入文件。
package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Result 单个文件的处理结果
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// Options worker 数与完成回调
type Options struct {
	Jobs int
	// OnDone 每个文件结束（成功或失败）后调用，可能来自多个 goroutine
	OnDone func(path string, err error)
}

// Run 把 paths 分发给 Jobs 个 worker，每个 worker 独立处理一个文件。
// 单个文件的错误或 panic 只记录在该文件的 Result 中，不影响其它文件。
// 返回值按完成顺序排列；ctx 取消后不再分发新文件，已开始的文件照常完成。
func Run[T any](ctx context.Context, paths []string, opts Options, fn func(ctx context.Context, path string) (T, error)) []Result[T] {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	queue := make(chan string)
	results := make(chan Result[T], jobs)

	var workerWg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for p := range queue {
				res := runOne(ctx, p, fn)
				if opts.OnDone != nil {
					opts.OnDone(p, res.Err)
				}
				results <- res
			}
		}()
	}

	// 分发
	go func() {
		defer close(queue)
		for _, p := range paths {
			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		workerWg.Wait()
		close(results)
	}()

	out := make([]Result[T], 0, len(paths))
	for res := range results {
		out = append(out, res)
	}
	return out
}

func runOne[T any](ctx context.Context, p string, fn func(ctx context.Context, path string) (T, error)) (res Result[T]) {
	res.Path = p
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("worker panic on %s: %v\n%s", p, r, debug.Stack())
		}
	}()
	res.Value, res.Err = fn(ctx, p)
	return res
}

// Succeeded 过滤出成功的结果值，保持原有顺序
func Succeeded[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}

// Failed 失败文件路径
func Failed[T any](results []Result[T]) []string {
	var out []string
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r.Path)
		}
	}
	return out
}
