package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lectio/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the archive and provider access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderHeading("Preflight", colorize))
				for _, r := range results {
					kind := checkOK
					if !r.Passed {
						kind = checkFail
					}
					fmt.Fprintln(out, renderCheckLine(r.Name, kind, r.Detail, colorize))
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
