package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the host environment and any .env file out of the run.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{"DATABASE_URL", "REDIS_URL", "JOBBOARD_DATABASE_URL", "JOBBOARD_REDIS_URL", "PORT"} {
		t.Setenv(k, "")
	}
	t.Setenv("JOBBOARD_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := BuildCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCLI(t *testing.T) {
	cmd := BuildCLI()
	assert.Equal(t, "jobboard", cmd.Use)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "import", "flush-cache", "list"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestListCommandEmptyStore(t *testing.T) {
	isolate(t)

	out, err := run(t, "list", "--type", "internship", "--limit", "100")
	require.NoError(t, err)
	assert.Equal(t, "No jobs found.\n", out)
}

func TestFlushCacheCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "flush-cache")
	require.NoError(t, err)
	assert.NotContains(t, out, "cache cleared")
	assert.Contains(t, out, "/api/admin/clear-cache")
}

func TestFlushCacheCommandUnreachableRedis(t *testing.T) {
	isolate(t)
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")

	_, err := run(t, "flush-cache")
	assert.ErrorContains(t, err, "flush cache")
}

func TestInvalidConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "jobboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: -1s\n"), 0o600))

	_, err := run(t, "--config", path, "list")
	assert.ErrorContains(t, err, "cache.ttl")
}

func TestImportRejectsUnknownSource(t *testing.T) {
	isolate(t)
	t.Setenv("JOBBOARD_IMPORTER_SOURCES", "monster")

	_, err := run(t, "import")
	assert.ErrorContains(t, err, "unknown source")
}
