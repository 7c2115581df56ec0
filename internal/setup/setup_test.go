package setup

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArtifact = `{
  "kind": "logistic_regression",
  "classes": [1, 2],
  "coefficients": [-0.03, 0.4, 0.2, -0.1, 0.3, 0.5, 1.1, 0.6, -0.6, -0.002, 0.001, 1.2, 0.02, 0.7],
  "intercept": -6.5
}`

type fixture struct {
	dir        string
	configPath string
	binary     string
	model      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:        dir,
		configPath: filepath.Join(dir, "Claude", "claude_desktop_config.json"),
		binary:     filepath.Join(dir, "mcp-server"),
		model:      filepath.Join(dir, "model.json"),
	}
	require.NoError(t, os.WriteFile(f.binary, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(f.model, []byte(testArtifact), 0o644))
	return f
}

func TestDesktopConfigPath(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(k string) string { return values[k] }
	}

	tests := []struct {
		name    string
		goos    string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{"darwin", "darwin", nil, filepath.Join("/home/u", "Library", "Application Support", "Claude", "claude_desktop_config.json"), false},
		{"linux default", "linux", nil, filepath.Join("/home/u", ".config", "Claude", "claude_desktop_config.json"), false},
		{"linux xdg", "linux", map[string]string{"XDG_CONFIG_HOME": "/xdg"}, filepath.Join("/xdg", "Claude", "claude_desktop_config.json"), false},
		{"windows", "windows", map[string]string{"APPDATA": "/appdata"}, filepath.Join("/appdata", "Claude", "claude_desktop_config.json"), false},
		{"windows without appdata", "windows", nil, "", true},
		{"unsupported", "plan9", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DesktopConfigPath(tt.goos, "/home/u", env(tt.env))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDesktopConfig_Missing(t *testing.T) {
	cfg, err := LoadDesktopConfig(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)
}

func TestLoadDesktopConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadDesktopConfig(path)
	assert.Error(t, err)
}

func TestRegister_WritesEntry(t *testing.T) {
	f := newFixture(t)

	entry, err := Register(Options{ConfigPath: f.configPath, BinaryPath: f.binary, ModelPath: f.model})
	require.NoError(t, err)

	assert.Equal(t, f.binary, entry.Command)
	assert.Equal(t, f.model, entry.Env["LIVER_RISK_MODEL_PATH"])
	assert.Equal(t, "stderr", entry.Env["LIVER_RISK_LOGGING_OUTPUT"])

	cfg, err := LoadDesktopConfig(f.configPath)
	require.NoError(t, err)
	assert.Equal(t, entry, cfg.MCPServers[ServerName])
}

func TestRegister_MakesPathsAbsolute(t *testing.T) {
	f := newFixture(t)
	t.Chdir(f.dir)

	entry, err := Register(Options{ConfigPath: f.configPath, BinaryPath: "mcp-server", ModelPath: "model.json"})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(entry.Command))
	assert.True(t, filepath.IsAbs(entry.Env["LIVER_RISK_MODEL_PATH"]))
}

func TestRegister_PreservesOtherSettings(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.configPath), 0o755))
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"/bin/other"}}}`
	require.NoError(t, os.WriteFile(f.configPath, []byte(existing), 0o644))

	_, err := Register(Options{ConfigPath: f.configPath, BinaryPath: f.binary, ModelPath: f.model})
	require.NoError(t, err)

	data, err := os.ReadFile(f.configPath)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "dark", raw["theme"])

	cfg, err := LoadDesktopConfig(f.configPath)
	require.NoError(t, err)
	assert.Equal(t, "/bin/other", cfg.MCPServers["other"].Command)
	assert.Contains(t, cfg.MCPServers, ServerName)
}

func TestGetStatus(t *testing.T) {
	t.Run("not registered", func(t *testing.T) {
		f := newFixture(t)

		status, err := GetStatus(f.configPath)
		require.NoError(t, err)
		assert.False(t, status.Registered)
		assert.NotEmpty(t, status.Issues)
	})

	t.Run("healthy", func(t *testing.T) {
		f := newFixture(t)
		_, err := Register(Options{ConfigPath: f.configPath, BinaryPath: f.binary, ModelPath: f.model})
		require.NoError(t, err)

		status, err := GetStatus(f.configPath)
		require.NoError(t, err)
		assert.True(t, status.Registered)
		assert.True(t, status.ModelLoaded)
		assert.Empty(t, status.Issues)
	})

	t.Run("broken model", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.model, []byte(`{"classes":[1,2]}`), 0o644))
		_, err := Register(Options{ConfigPath: f.configPath, BinaryPath: f.binary, ModelPath: f.model})
		require.NoError(t, err)

		status, err := GetStatus(f.configPath)
		require.NoError(t, err)
		assert.False(t, status.ModelLoaded)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "Model cannot be loaded")
	})

	t.Run("missing binary", func(t *testing.T) {
		f := newFixture(t)
		_, err := Register(Options{ConfigPath: f.configPath, BinaryPath: f.binary, ModelPath: f.model})
		require.NoError(t, err)
		require.NoError(t, os.Remove(f.binary))

		status, err := GetStatus(f.configPath)
		require.NoError(t, err)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "Server binary not found")
	})
}

func newTestCLI(input string, f fixture) (*CLI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cli := NewCLI(strings.NewReader(input), out)
	cli.goos = "linux"
	cli.home = func() (string, error) { return f.dir, nil }
	cli.getenv = func(string) string { return "" }
	cli.executable = func() (string, error) { return f.binary, nil }
	return cli, out
}

func TestCLI_RegisterAndStatus(t *testing.T) {
	f := newFixture(t)
	cli, out := newTestCLI("", f)

	require.NoError(t, cli.Run([]string{"claude-desktop", "--model", f.model, "-y"}))
	assert.Contains(t, out.String(), "configured successfully")

	defaultPath := filepath.Join(f.dir, ".config", "Claude", "claude_desktop_config.json")
	cfg, err := LoadDesktopConfig(defaultPath)
	require.NoError(t, err)
	assert.Equal(t, f.binary, cfg.MCPServers[ServerName].Command)

	out.Reset()
	require.NoError(t, cli.Run([]string{"status"}))
	assert.Contains(t, out.String(), "Registration: ✓ Configured")
	assert.Contains(t, out.String(), "Model check: ✓ Loads")
}

func TestCLI_RegisterConfirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		f := newFixture(t)
		cli, out := newTestCLI("n\n", f)

		require.NoError(t, cli.Run([]string{"claude-desktop", "-c", f.configPath, "-m", f.model}))

		assert.Contains(t, out.String(), "Configuration cancelled.")
		assert.NoFileExists(t, f.configPath)
	})

	t.Run("accepted by default", func(t *testing.T) {
		f := newFixture(t)
		cli, _ := newTestCLI("\n", f)

		require.NoError(t, cli.Run([]string{"claude-desktop", "-c", f.configPath, "-m", f.model}))
		assert.FileExists(t, f.configPath)
	})
}

func TestCLI_BadOptions(t *testing.T) {
	f := newFixture(t)
	cli, _ := newTestCLI("", f)

	assert.ErrorContains(t, cli.Run([]string{"claude-desktop", "--verbose"}), "unknown option")
	assert.ErrorContains(t, cli.Run([]string{"status", "--config"}), "requires a value")
}

func TestCLI_Help(t *testing.T) {
	f := newFixture(t)
	cli, out := newTestCLI("", f)

	require.NoError(t, cli.Run(nil))
	assert.Contains(t, out.String(), "claude-desktop")

	out.Reset()
	require.NoError(t, cli.Run([]string{"bogus"}))
	assert.Contains(t, out.String(), "Unknown command: bogus")
}
