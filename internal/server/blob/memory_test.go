package blob

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, "files/a", strings.NewReader("hello"), 5, "text/plain"))
	require.Error(t, m.Put(ctx, "files/b", strings.NewReader("hello"), 4, ""))
	assert.Equal(t, 1, m.Len())

	rc, err := m.Open(ctx, "files/a")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	u, err := m.PresignGet(ctx, "files/a", "a.txt", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "memory:///files%2Fa?")
	assert.Contains(t, u, "attachment")

	require.NoError(t, m.Delete(ctx, "files/a"))
	require.ErrorIs(t, m.Delete(ctx, "files/a"), common.ErrorNotFound)
	_, err = m.Open(ctx, "files/a")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.PresignGet(ctx, "files/a", "a.txt", time.Minute)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), "memory", Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(context.Background(), "ftp", Options{})
	require.ErrorContains(t, err, `unknown blob driver "ftp"`)
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, `attachment; filename="my \"file\".txt"`, attachment(`my "file".txt`))
}
