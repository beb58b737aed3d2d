package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	size       int
	overlap    int
	strategy   string
	format     string
	cachePath  string
	json       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "contractchunk",
		Short:         "Extract and chunk contract documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to YAML config file")
	pf.IntVar(&flags.size, "size", 0, "target chunk size in characters")
	pf.IntVar(&flags.overlap, "overlap", 0, "characters carried into the next chunk")
	pf.StringVar(&flags.strategy, "strategy", "", "chunking strategy: sentence or recursive")
	pf.StringVar(&flags.format, "format", "", "document format (pdf or docx); inferred from the file name when empty")
	pf.StringVar(&flags.cachePath, "cache", "", "path to the extraction cache database")
	pf.BoolVar(&flags.json, "json", false, "print JSON output")

	root.AddCommand(
		newChunkCmd(flags),
		newSummarizeCmd(flags),
		newServeCmd(flags),
	)
	return root
}
