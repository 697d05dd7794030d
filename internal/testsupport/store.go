package testsupport

import (
	"testing"

	"lectio/internal/archive"
	"lectio/internal/config"
)

// MustOpenArchive opens the archive for cfg and closes it when the test ends.
func MustOpenArchive(t testing.TB, cfg *config.Config) *archive.Store {
	t.Helper()

	store, err := archive.Open(cfg)
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
