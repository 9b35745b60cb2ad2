package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCommand(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "1700000000000-0badcafe-notes.txt"), []byte("hi"), 0o600))

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("BLOB_BACKEND", "local")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("ENVIRONMENT", "test")

	root := NewRootCommand(VersionInfo{Version: "test", Commit: "abc"})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"reconcile"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "adopted 1 files, dropped 0 records")
	assert.Contains(t, out.String(), "notes.txt")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassette")

	root := NewRootCommand(VersionInfo{Version: "test", Commit: "abc"})
	root.SetArgs([]string{"reconcile"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "cassette")
}
