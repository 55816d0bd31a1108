package repositories

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBackupRestore(t *testing.T) {
	source, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { source.Close() })

	post := newPost("Backed Up")
	require.NoError(t, source.Posts.Create(post))
	_, err = source.Tags.Ensure("Go")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.Backup(&buf))
	assert.NotZero(t, buf.Len())

	target, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { target.Close() })
	assert.Empty(t, target.Path())

	require.NoError(t, target.Restore(&buf))

	got, err := target.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backed Up", got.Title)

	_, err = target.Tags.GetByName("go")
	assert.NoError(t, err)
}
