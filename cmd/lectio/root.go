package main

import (
	"github.com/spf13/cobra"
)

const (
	groupReadings   = "readings"
	groupOperations = "operations"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var verboseFlag bool

	ctx := newCommandContext(&configFlag, &jsonFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "lectio",
		Short:         "Daily Mass readings, scripture and devotional artwork",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log provider activity to stderr")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupReadings, Title: "Readings:"},
		&cobra.Group{ID: groupOperations, Title: "Operations:"},
	)
	addGrouped(rootCmd, groupReadings,
		newTodayCommand(ctx),
		newScriptureCommand(ctx),
		newSearchCommand(ctx),
		newArtCommand(ctx),
		newSaintCommand(ctx),
		newHistoryCommand(ctx),
	)
	addGrouped(rootCmd, groupOperations,
		newServeCommand(ctx),
		newDoctorCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}

func addGrouped(parent *cobra.Command, group string, children ...*cobra.Command) {
	for _, child := range children {
		child.GroupID = group
		parent.AddCommand(child)
	}
}
