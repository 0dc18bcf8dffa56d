package artifact

import (
	"context"
	"fmt"
)

// Store persists whole-file artifacts keyed by path.
type Store interface {
	// Save stores (or overwrites) the artifact at path.
	Save(ctx context.Context, path string, data []byte) error
	// Get returns the artifact at path or ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)
	// Exists reports whether an artifact is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes the artifact at path or returns ErrNotFound.
	Delete(ctx context.Context, path string) error
	// List returns the sorted paths that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// SaveText stores text as UTF-8.
func SaveText(ctx context.Context, s Store, path, text string) error {
	if err := s.Save(ctx, path, []byte(text)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// GetText loads an artifact as text.
func GetText(ctx context.Context, s Store, path string) (string, error) {
	b, err := s.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", path, err)
	}
	return string(b), nil
}

// Missing returns the paths that do not exist in s, in input order.
func Missing(ctx context.Context, s Store, paths ...string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		ok, err := s.Exists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !ok {
			missing = append(missing, p)
		}
	}
	return missing, nil
}
