package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFSStore(root)

	require.NoError(t, SaveText(ctx, s, "class/model_answers.txt", "1) B"))
	require.NoError(t, SaveText(ctx, s, "class/model_answers.txt", "1) C"))

	text, err := GetText(ctx, s, "class/model_answers.txt")
	require.NoError(t, err)
	assert.Equal(t, "1) C", text)

	raw, err := os.ReadFile(filepath.Join(root, "class", "model_answers.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1) C", string(raw))

	ok, err := s.Exists(ctx, "class/model_answers.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	paths, err := s.List(ctx, "class/")
	require.NoError(t, err)
	assert.Equal(t, []string{"class/model_answers.txt"}, paths)

	require.NoError(t, s.Delete(ctx, "class/model_answers.txt"))
	require.ErrorIs(t, s.Delete(ctx, "class/model_answers.txt"), ErrNotFound)
}

func TestFSStore_NotFound(t *testing.T) {
	s := NewFSStore(t.TempDir())

	_, err := s.Get(context.Background(), "missing.txt")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(context.Background(), "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFSStore_RejectsEscapes(t *testing.T) {
	s := NewFSStore(t.TempDir())

	for _, p := range []string{"", "../x.txt", "/etc/passwd"} {
		err := s.Save(context.Background(), p, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestFSStore_NoRootUsesPathsAsIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Student1.txt")
	s := NewFSStore("")

	require.NoError(t, s.Save(context.Background(), path, []byte("answers")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "answers", string(b))
}

func TestMissing(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Save(ctx, "a", nil))

	missing, err := Missing(ctx, s, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, missing)
}
