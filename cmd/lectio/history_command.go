package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lectio/internal/api"
	"lectio/internal/devotion"
)

type galleryEntry struct {
	Key       string `json:"key"`
	Reference string `json:"reference,omitempty"`
	Context   string `json:"context"`
	Season    string `json:"season"`
	Path      string `json:"path,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var gallery bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived liturgical days or generated artwork",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			return ctx.withService(cmd, func(runCtx context.Context, svc *devotion.Service) error {
				if gallery {
					return printGallery(runCtx, cmd, ctx, svc, limit)
				}
				days, err := svc.History(runCtx, limit)
				if err != nil {
					return err
				}
				resp := api.HistoryResponse{Days: api.FromDaySummaries(days)}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Days) == 0 {
					fmt.Fprintln(out, "No archived days yet")
					return nil
				}
				rows := make([][]string, 0, len(resp.Days))
				for _, d := range resp.Days {
					rows = append(rows, []string{d.Date, d.Title, d.Season, d.Color, d.Saint, yesNo(d.Degraded)})
				}
				fmt.Fprintln(out, renderTable([]string{"Date", "Title", "Season", "Color", "Saint", "Degraded"}, rows, 1))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "Maximum number of entries")
	cmd.Flags().BoolVar(&gallery, "gallery", false, "List generated artwork instead of days")

	cmd.AddCommand(newHistoryExportCommand(ctx))
	cmd.AddCommand(newHistoryImportCommand(ctx))
	return cmd
}

func printGallery(runCtx context.Context, cmd *cobra.Command, ctx *commandContext, svc *devotion.Service, limit int) error {
	records, err := svc.Gallery(runCtx, limit)
	if err != nil {
		return err
	}
	entries := make([]galleryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, galleryEntry{
			Key:       r.Key,
			Reference: r.Reference,
			Context:   r.Context,
			Season:    r.Season,
			Path:      r.Path,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No artwork generated yet")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{shortKey(r.Key), r.Reference, r.Context, r.Season, humanize.Time(r.CreatedAt)})
	}
	fmt.Fprintln(out, renderTable([]string{"Key", "Reference", "Context", "Season", "Created"}, rows))
	return nil
}
