// s1s2 统计 FASTQ reads 中序列组合的正向/反向互补匹配（S1），
// 并按两个分隔序列把单条 read 拆分为 R1/R2 片段（S2）。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.2.0"
	BuildTime = "2025-11-03"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("s1s2 v%s (Build: %s)\n", Version, BuildTime)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	}
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "s1s2",
		Short: "Adapter pattern counting and separator splitting for FASTQ reads",
		Long: `s1s2: FASTQ adapter classification and separator splitting

  s1        count reads containing every pattern, forward or reverse-complemented
  s2        split each read at two separator sequences into R1/R2 fragments
  pipeline  run s1 (writing matched reads) and then s2 on every matched file`,
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(s1Command())
	rootCmd.AddCommand(s2Command())
	rootCmd.AddCommand(pipelineCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
