package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"contractchunk/api"
	"contractchunk/document"
	"contractchunk/pipeline"
	"contractchunk/summary"

	"github.com/spf13/cobra"
)

func newChunkCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chunk <file>",
		Short: "Extract a contract and print its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.chunkFile(cmd, flags, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "%d chunks from %s (%s, %d characters)\n", len(res.Records), args[0], res.Format, res.Characters)
			for _, rec := range res.Records {
				fmt.Fprintf(out, "\n--- %s (%d characters", rec.ID, utf8.RuneCountInString(rec.Text))
				if rec.Tokens > 0 {
					fmt.Fprintf(out, ", %d tokens", rec.Tokens)
				}
				fmt.Fprintf(out, ") ---\n%s\n", summary.Shorten(rec.Text, summary.PreviewWidth))
			}
			return nil
		},
	}
}

type summaryOutput struct {
	RunID   string `json:"run_id"`
	File    string `json:"file"`
	Chunks  int    `json:"chunks"`
	Summary string `json:"summary"`
}

func newSummarizeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file>",
		Short: "Print an extractive summary built from the leading chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.chunkFile(cmd, flags, args[0])
			if err != nil {
				return err
			}
			text, err := a.summarizer.Summarize(cmd.Context(), res.Chunks())
			if err != nil {
				return fmt.Errorf("failed to summarize: %w", err)
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, summaryOutput{
					RunID:   res.RunID,
					File:    args[0],
					Chunks:  len(res.Records),
					Summary: text,
				})
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chunking HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := api.NewServer(a.pipeline, a.summarizer, api.Options{
				Port:           a.cfg.Server.Port,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
				Strategy:       a.cfg.Chunk.Strategy,
				Settings:       a.settings,
			}, a.logger)
			return srv.Start(cmd.Context())
		},
	}
}

func (a *app) chunkFile(cmd *cobra.Command, flags *rootFlags, path string) (*pipeline.Result, error) {
	tag := flags.format
	if tag == "" {
		tag = path
	}
	format, err := document.ParseFormat(tag)
	if err != nil && flags.format == "" {
		format, err = sniffFile(path)
	}
	if err != nil {
		return nil, err
	}

	res, err := a.pipeline.FileToChunks(cmd.Context(), path, format)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", path, pipeline.NoTextFound)
	}
	return res, nil
}

// sniffFile detects the format of a file whose name carries no usable
// extension.
func sniffFile(path string) (document.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	format, _, err := document.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return format, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
