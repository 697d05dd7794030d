package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/api"
	"lectio/internal/devotion"
)

func newScriptureCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "scripture <citation>",
		Aliases: []string{"read"},
		Short:   "Print a scripture passage, e.g. \"John 3:16-18\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			citation := strings.Join(args, " ")
			return ctx.withService(cmd, func(runCtx context.Context, svc *devotion.Service) error {
				reading, err := svc.GetScriptureText(runCtx, citation)
				if err != nil {
					return fmt.Errorf("fetch %q: %w", citation, err)
				}
				dto := api.FromReading(reading)
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.ScriptureResponse{Reading: dto})
				}
				out := cmd.OutOrStdout()
				printReading(out, dto, shouldColorize(out))
				return nil
			})
		},
	}
}
