package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	"github.com/turtacn/KeyIP-Insight/internal/config"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

// isolate keeps tests away from config files and KEYIP_* variables of the
// machine running them.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "KEYIP_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func execute(t *testing.T, builder ServiceBuilder, args ...string) (string, string, error) {
	t.Helper()
	isolate(t)
	root := NewRootCommand(builder)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(nil)

	assert.Equal(t, "keyip-insight", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["search"])
	assert.True(t, names["classify"])
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand(nil)
	pf := cmd.PersistentFlags()

	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color"} {
		assert.NotNil(t, pf.Lookup(name), name)
	}
	assert.Equal(t, "text", pf.Lookup("output").DefValue)
	assert.Equal(t, "o", pf.Lookup("output").Shorthand)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, nil, "classify", "x", "-o", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, nil, "classify", "x", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestRoot_ConfigFileCredentialsReachService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote:\n  base_url: https://patents.example/v2\n  bearer_token: file-token\n"), 0o600))

	var got *config.Config
	builder := func(cfg *config.Config, logger logging.Logger) search.Service {
		got = cfg
		return search.NewService(nil, logger)
	}
	_, _, err := execute(t, builder, "classify", "x", "--config", path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://patents.example/v2", got.Remote.BaseURL)
	assert.Equal(t, "file-token", got.Remote.BearerToken)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, nil)
	assert.Empty(t, buf.String())

	PrintError(cmd, errors.New(errors.ErrCodeEmptyQuery, "query must not be empty"))
	assert.Contains(t, buf.String(), "query must not be empty")
}

//Personal.AI order the ending
