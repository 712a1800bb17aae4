// Package storage abstracts the remote object store holding the corpus,
// the manifests, and the uploaded results.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrAlreadyExists is returned when uploading without overwrite to an
// existing object.
var ErrAlreadyExists = errors.New("object already exists")

// ObjectInfo describes a single remote object.
type ObjectInfo struct {
	Name string
	Size int64
}

// Store is the narrow surface all remote calls route through.
type Store interface {
	// List returns all objects whose names start with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Exists reports whether the named object exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Download returns the full contents of the named object.
	Download(ctx context.Context, name string) ([]byte, error)

	// Upload writes the object. When overwrite is false and the object
	// exists, ErrAlreadyExists is returned.
	Upload(ctx context.Context, name string, data []byte, overwrite bool) error

	// Delete removes the named object. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, name string) error
}
