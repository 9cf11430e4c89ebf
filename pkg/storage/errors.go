package storage

import (
	"errors"
	"path"
	"slices"
	"strings"
)

// Storage errors.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("storage key must not be empty")
	ErrInvalidKey = errors.New("storage key must be a relative slash-separated path")
)

// validateKey rejects keys that could escape the container or local root.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	if slices.Contains(strings.Split(key, "/"), "..") || path.Clean(key) != key {
		return ErrInvalidKey
	}
	return nil
}
