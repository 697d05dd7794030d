package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lectio/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, errorMessage(err))
		}
		os.Exit(1)
	}
}

func errorMessage(err error) string {
	if services.IsRetryable(err) {
		return err.Error() + " (temporary failure; try again later)"
	}
	return err.Error()
}
