//go:build !sqlite

package storage

import perrors "gaplace/internal/errors"

func newSQLiteStore(_ string) (Store, error) {
	return nil, perrors.InvalidConfig("store", "sqlite backend is not compiled in; build with -tags sqlite")
}
