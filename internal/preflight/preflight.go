package preflight

import (
	"context"

	"lectio/internal/config"
)

// minFreeBytes is the free space below which the cache directory check fails.
const minFreeBytes = 100 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckFreeSpace("Cache free space", cfg.Paths.CacheDir, minFreeBytes),
		CheckArchive(ctx, cfg.ArchivePath()),
		CheckFeed(ctx, cfg.Feed.URL, cfg.Feed.UserAgent),
		CheckScriptureProvider(ctx, cfg),
		CheckImageProvider(cfg),
	}
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
