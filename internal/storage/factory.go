package storage

import (
	"errors"
	"strings"

	perrors "gaplace/internal/errors"
)

// DefaultStoreKind keeps records across CLI invocations without a database.
const DefaultStoreKind = "file"

var errNotInitialized = errors.New("store is not initialized")

// NewStore builds an uninitialised store. path is the directory for "file"
// and the database file for "sqlite"; "memory" ignores it.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, perrors.InvalidConfig("store", "unsupported store backend %q (want memory, file or sqlite)", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

// validateKey rejects names that cannot be used as a record key or file name.
func validateKey(field, key string) error {
	if strings.TrimSpace(key) == "" {
		return perrors.InvalidConfig(field, "must not be empty")
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`+"\x00") {
		return perrors.InvalidConfig(field, "%q is not a valid record name", key)
	}
	return nil
}
