package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	t.Cleanup(func() { configPath = "" })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	build = BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"}
	t.Cleanup(func() { build = BuildInfo{} })

	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "taskdeck 1.2.3 (commit: abc, built: today)\n", out)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)

	_, err = execute(t, "config", "init", "--force", "--config", path)
	require.NoError(t, err)

	t.Setenv("TASKDECK_UI_PAGE_SIZE", "25")
	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "page_size: 25")
	require.Contains(t, out, "url: http://localhost:8080")
}

func TestConfigShow_MissingExplicitFile(t *testing.T) {
	_, err := execute(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
