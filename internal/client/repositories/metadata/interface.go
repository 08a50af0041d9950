// Package metadata is the client's persisted key/value store. It plays the
// role of browser local storage: the auth token survives restarts here.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken    = "token"
	KeyLastCNPJ = "last_cnpj"
)

type Repository interface {
	// Get returns the value stored under key; ok is false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
