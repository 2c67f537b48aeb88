package vmap

import "errors"

var (
	// ErrTransformSingular is returned when a degenerate quad cannot be
	// inverted.
	ErrTransformSingular = errors.New("vmap: transform is singular")

	// ErrLayoutMissing is returned when a layout file does not exist.
	// The Mapper is left untouched.
	ErrLayoutMissing = errors.New("vmap: layout not found")

	// ErrLayoutMalformed marks a layout document or entry that violates the
	// schema.
	ErrLayoutMalformed = errors.New("vmap: malformed layout")

	// ErrSurfaceLocked is returned when removing a locked surface.
	ErrSurfaceLocked = errors.New("vmap: surface is locked")

	// ErrSurfaceNotFound is returned for an unknown surface id.
	ErrSurfaceNotFound = errors.New("vmap: surface not found")

	// ErrUnknownSurfaceType is returned for a type other than quad or bezier.
	ErrUnknownSurfaceType = errors.New("vmap: unknown surface type")

	// ErrUnknownFormat is returned for an unsupported layout encoding.
	ErrUnknownFormat = errors.New("vmap: unknown layout format")
)
