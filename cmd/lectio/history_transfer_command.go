package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/archive"
	"lectio/internal/fileutil"
)

func newHistoryExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the archive to an xz-compressed JSON lines file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(outputPath)
			if target == "" {
				return errors.New("--output is required")
			}
			return withArchive(ctx, func(store *archive.Store) error {
				var stats archive.TransferStats
				err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
					var err error
					stats, err = store.Export(cmd.Context(), w)
					return err
				})
				if err != nil {
					return fmt.Errorf("export archive: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days and %d artworks to %s\n", stats.Days, stats.Artwork, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Export file, e.g. lectio-archive.jsonl.xz")
	return cmd
}

func newHistoryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore days and artwork from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer file.Close()

			return withArchive(ctx, func(store *archive.Store) error {
				stats, err := store.Import(cmd.Context(), file)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days and %d artworks\n", stats.Days, stats.Artwork)
				return nil
			})
		},
	}
}

func withArchive(ctx *commandContext, fn func(*archive.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := archive.Open(cfg)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer store.Close()
	return fn(store)
}
