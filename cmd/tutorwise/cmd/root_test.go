package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"serve", "migrate", "ingest", "ask"} {
		assert.True(t, names[name], name)
	}
}

func TestIngestRequiresContentID(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"ingest"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, root.ExecuteContext(t.Context()))
}

func TestMigrate(t *testing.T) {
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "tutorwise.sqlite"))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--drop"})
	root.SetOut(&out)
	root.SetErr(&out)

	require.NoError(t, root.ExecuteContext(t.Context()))
	assert.Contains(t, out.String(), "migration completed")
}
