package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lectio/internal/artwork"
	"lectio/internal/devotion"
	"lectio/internal/fileutil"
	"lectio/internal/scripture"
)

type artResult struct {
	Path        string `json:"path"`
	Key         string `json:"key"`
	Placeholder bool   `json:"placeholder"`
	Source      string `json:"source"`
	Bytes       int    `json:"bytes"`
}

func newArtCommand(ctx *commandContext) *cobra.Command {
	var (
		verseText  string
		verseRef   string
		contextTag string
		withSaint  bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "art [citation]",
		Short: "Generate devotional artwork for a passage or verse",
		Long: "Generate devotional artwork for a scripture citation, or for verse text given with --text.\n" +
			"A placeholder image is written when the image provider is disabled or fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := devotion.ArtRequest{Context: strings.TrimSpace(contextTag), WithSaint: withSaint}
			if req.Context != "" {
				if _, err := artwork.ParseContextType(req.Context); err != nil {
					return err
				}
			}
			switch citation := strings.TrimSpace(strings.Join(args, " ")); {
			case citation != "":
				ref, err := scripture.ParseLooseReference(citation)
				if err != nil {
					return err
				}
				req.Reference = &ref
			case strings.TrimSpace(verseText) != "":
				req.Verse = &scripture.Verse{Text: strings.TrimSpace(verseText), Reference: strings.TrimSpace(verseRef)}
			default:
				return errors.New("a citation or --text is required")
			}

			return ctx.withService(cmd, func(runCtx context.Context, svc *devotion.Service) error {
				img, err := svc.GenerateArt(runCtx, req)
				if err != nil {
					return err
				}
				target := strings.TrimSpace(outputPath)
				if target == "" {
					target = "lectio-" + shortKey(img.Key) + ".jpg"
				}
				if dir := filepath.Dir(target); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("create output dir: %w", err)
					}
				}
				if err := fileutil.WriteFileAtomic(target, img.Data, 0o644); err != nil {
					return fmt.Errorf("write artwork: %w", err)
				}

				result := artResult{Path: target, Key: img.Key, Placeholder: img.Placeholder, Source: img.Source, Bytes: len(img.Data)}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Wrote artwork to %s (source: %s)\n", result.Path, result.Source)
				if result.Placeholder {
					fmt.Fprintln(out, "Image provider unavailable; a placeholder was written instead.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&verseText, "text", "", "Verse text to illustrate instead of a citation")
	cmd.Flags().StringVar(&verseRef, "verse", "", "Reference label for --text, e.g. \"Psalms 23:1\"")
	cmd.Flags().StringVar(&contextTag, "context", "", "Artwork context: narrative, psalm, parable, gospel, prophecy, epistle, wisdom, apocalyptic, law")
	cmd.Flags().BoolVar(&withSaint, "saint", false, "Include today's saint in the artwork")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default lectio-<key>.jpg)")
	return cmd
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
