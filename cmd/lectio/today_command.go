package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/api"
	"lectio/internal/devotion"
	"lectio/internal/liturgy"
)

func newTodayCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's liturgical day and Mass readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(runCtx context.Context, svc *devotion.Service) error {
				var (
					day liturgy.LiturgicalDay
					err error
				)
				if refresh {
					day, err = svc.RefreshLiturgy(runCtx)
				} else {
					day, err = svc.GetTodaysLiturgy(runCtx)
				}
				if day.Date.IsZero() {
					if err == nil {
						err = fmt.Errorf("no liturgical day available")
					}
					return err
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: showing the last good day: %v\n", err)
				}
				dto := api.FromLiturgicalDay(day, svc.LiturgySnapshot().Archived)
				if ctx.jsonOutput() {
					return writeJSON(cmd, dto)
				}
				printDay(cmd, dto)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch the feed even if today is already assembled")
	return cmd
}

func printDay(cmd *cobra.Command, day api.Day) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderHeading(day.Title, colorize))
	fmt.Fprintln(out, renderCheckLine("Date", checkInfo, day.Date, colorize))
	fmt.Fprintln(out, renderCheckLine("Season", checkInfo, day.Season, colorize))
	fmt.Fprintln(out, renderCheckLine("Color", checkInfo, day.Color, colorize))
	fmt.Fprintln(out, renderCheckLine("Rank", checkInfo, day.Rank, colorize))
	if day.Saint != nil {
		fmt.Fprintln(out, renderCheckLine("Saint", checkInfo, day.Saint.Name, colorize))
	}
	if len(day.Commemorations) > 0 {
		fmt.Fprintln(out, renderCheckLine("Commemorations", checkInfo, strings.Join(day.Commemorations, "; "), colorize))
	}
	if day.Archived {
		fmt.Fprintln(out, renderCheckLine("Source", checkWarn, "archive (feed unavailable)", colorize))
	}
	if day.Degraded {
		fmt.Fprintln(out, renderCheckLine("Readings", checkWarn, "some readings could not be extracted", colorize))
	}
	for _, reading := range day.Readings {
		fmt.Fprintln(out)
		printReading(out, reading, colorize)
	}
}
