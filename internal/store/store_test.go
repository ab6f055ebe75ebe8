// store_test.go provides the shared backend helper for the typed store
// tests. They run against a flat-file backend in a temp directory; the
// PostgreSQL backend has its own integration tests in pgstore.
package store_test

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"devflink/internal/store"
	"devflink/internal/store/filestore"
)

func init() {
	store.PasswordCost = bcrypt.MinCost
}

// testBackend returns an empty file-backed CollectionStore.
func testBackend(t *testing.T) store.CollectionStore {
	t.Helper()
	fs := filestore.New(t.TempDir())
	if err := fs.Init(); err != nil {
		t.Fatalf("init file store: %v", err)
	}
	return fs
}
