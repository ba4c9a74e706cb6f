package interfaces

import "errors"

// ErrNotFound is returned by repositories when the requested record does not
// exist or has been soft-deleted. Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")
