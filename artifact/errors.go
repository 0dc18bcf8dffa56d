package artifact

import "fmt"

var (
	// ErrNotFound is returned when no artifact exists at the given path.
	ErrNotFound = fmt.Errorf("artifact not found")

	// ErrInvalidPath is returned for empty paths or paths escaping the store root.
	ErrInvalidPath = fmt.Errorf("invalid artifact path")
)
