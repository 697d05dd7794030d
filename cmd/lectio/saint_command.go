package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lectio/internal/api"
	"lectio/internal/devotion"
)

func newSaintCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "saint [MM-DD|YYYY-MM-DD]",
		Short: "List the saints celebrated on a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now()
			if len(args) == 1 {
				parsed, err := parseFeastDate(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				date = parsed
			}
			return ctx.withService(cmd, func(_ context.Context, svc *devotion.Service) error {
				resp := api.SaintsResponse{
					FeastDay: date.Format("01-02"),
					Saints:   api.FromSaints(svc.SaintsOn(date)),
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Saints) == 0 {
					fmt.Fprintf(out, "No saints on the calendar for %s\n", resp.FeastDay)
					return nil
				}
				rows := make([][]string, 0, len(resp.Saints))
				for _, s := range resp.Saints {
					rows = append(rows, []string{s.Name, s.Rank, strings.Join(s.Patronage, ", ")})
				}
				fmt.Fprintln(out, renderTable([]string{"Saint", "Rank", "Patron of"}, rows, 2))
				return nil
			})
		},
	}
}

// parseFeastDate accepts "MM-DD" or "YYYY-MM-DD".
func parseFeastDate(value string) (time.Time, error) {
	for _, layout := range []string{"01-02", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want MM-DD or YYYY-MM-DD", value)
}
