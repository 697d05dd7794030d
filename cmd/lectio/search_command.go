package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/api"
	"lectio/internal/devotion"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search scripture by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withService(cmd, func(runCtx context.Context, svc *devotion.Service) error {
				results, err := svc.SearchScripture(runCtx, query)
				if err != nil {
					return err
				}
				resp := api.SearchResponse{Query: query, Results: api.FromReadings(results)}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Results) == 0 {
					fmt.Fprintf(out, "No passages match %q\n", query)
					return nil
				}
				rows := make([][]string, 0, len(resp.Results))
				for _, r := range resp.Results {
					rows = append(rows, []string{r.Title, r.Text})
				}
				fmt.Fprintln(out, renderTable([]string{"Reference", "Text"}, rows, 1))
				return nil
			})
		},
	}
}
