package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

func TestServeCmd_Flags(t *testing.T) {
	assert.NotNil(t, serveCmd.Flags().Lookup("mcp-addr"))
}

func TestServeCmd_NoServices(t *testing.T) {
	SetServices(Services{})

	_, err := executeCommand(t, "", "serve")

	assert.EqualError(t, err, "services not configured")
}

func TestServeCmd_StopsOnCancel(t *testing.T) {
	setupTestServices(t)
	SetServerOptions(ServerOptions{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { SetServerOptions(ServerOptions{}) })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	serveCmd.SetContext(ctx)

	require.NoError(t, runServe(serveCmd, nil))
}

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("http-port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_MissingServices(t *testing.T) {
	SetServices(Services{})

	_, err := executeCommand(t, "", "mcp", "serve")

	assert.Error(t, err)
}

func TestWatchCmd_Flags(t *testing.T) {
	assert.NotNil(t, watchCmd.Flags().Lookup("settle"))
	assert.NotNil(t, watchCmd.Flags().Lookup("existing"))
}

func TestWatchCmd_MissingDir(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "", "watch", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestWatchCmd_IngestsExisting(t *testing.T) {
	s := setupTestServices(t)
	s.projects.project = &domain.Project{ID: 8, Name: "drop.pdf", TotalPages: 2}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.pdf"), []byte("%PDF"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	resetFlags()
	watchExisting = true
	watchSettle = 20 * time.Millisecond
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	watchCmd.SetOut(&out)
	watchCmd.SetContext(ctx)
	t.Cleanup(func() { watchCmd.SetOut(nil) })

	require.NoError(t, runWatch(watchCmd, []string{dir}))
	assert.Equal(t, "drop.pdf", s.projects.createdName)
	assert.Contains(t, out.String(), "project 8 (2 pages)")
}
