package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"lectio/internal/archive"
	"lectio/internal/config"
	"lectio/internal/services/bibleapi"
	"lectio/internal/services/feed"
	"lectio/internal/services/httpretry"
)

// probeReference is a short, stable verse used to validate provider access.
const probeReference = "JHN.3.16"

// statfsFunc returns total and available bytes for the filesystem holding path.
type statfsFunc func(path string) (total, avail uint64, err error)

var statfs statfsFunc = realStatfs

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace fails when the filesystem holding path has less than
// minBytes available.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	total, avail, err := statfs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free of %s", humanize.IBytes(avail), humanize.IBytes(total))
	if avail < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need at least %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckArchive opens the archive database and runs its health check.
func CheckArchive(ctx context.Context, path string) Result {
	const name = "Archive database"

	store, err := archive.OpenPath(path)
	if err != nil {
		if errors.Is(err, archive.ErrSchemaMismatch) {
			return Result{Name: name, Detail: err.Error()}
		}
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	defer store.Close()

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%v)", err)}
	}
	if !health.IntegrityCheck {
		return Result{Name: name, Detail: "integrity check failed"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d days, %d artworks", health.Days, health.Artwork)}
}

// CheckFeed fetches the liturgical feed once and requires at least one item.
func CheckFeed(ctx context.Context, url, userAgent string) Result {
	const name = "Liturgical feed"

	if strings.TrimSpace(url) == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := feed.NewClient(
		feed.Config{URL: url, UserAgent: userAgent, Timeout: 10 * time.Second},
		feed.WithRetryPolicy(httpretry.Policy{MaxAttempts: 1}),
	)
	items, err := client.Fetch(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	if len(items) == 0 {
		return Result{Name: name, Detail: "feed has no items"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d items)", len(items))}
}

// CheckScriptureProvider verifies the API key by fetching a single verse.
func CheckScriptureProvider(ctx context.Context, cfg *config.Config) Result {
	const name = "Scripture provider"

	if strings.TrimSpace(cfg.Scripture.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := bibleapi.NewClient(bibleapi.Config{
		APIKey:  cfg.Scripture.APIKey,
		BaseURL: cfg.Scripture.BaseURL,
		BibleID: cfg.Scripture.BibleID,
		Timeout: 10 * time.Second,
	}, bibleapi.WithRetryAttempts(1))

	if _, err := client.FetchVerseText(checkCtx, "", probeReference); err != nil {
		var statusErr *httpretry.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckImageProvider reports whether artwork generation is configured. It
// makes no network call since every generation is billed.
func CheckImageProvider(cfg *config.Config) Result {
	const name = "Image provider"

	if !cfg.Image.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled (placeholders only)"}
	}
	if strings.TrimSpace(cfg.Image.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	if _, _, err := config.ParseImageSize(cfg.Image.Size); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s at %s", cfg.Image.Model, cfg.Image.Size)}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (unreachable)"
	}
	return err.Error()
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return stat.Blocks * bsize, stat.Bavail * bsize, nil
}
