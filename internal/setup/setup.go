// Package setup registers the liver risk MCP server with desktop MCP clients.
package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/liver-risk-server/internal/config"
	"github.com/liver-risk-server/internal/logging"
	"github.com/liver-risk-server/internal/model"
)

// ServerName is the key of this server in the client's mcpServers map
const ServerName = "liver-risk"

// Environment variables written into the client entry
var (
	envModelPath = config.EnvPrefix + "_MODEL_PATH"
	envLogOutput = config.EnvPrefix + "_LOGGING_OUTPUT"
)

// DesktopConfig represents the desktop client's configuration file structure.
// Unknown top-level keys are preserved when the file is rewritten.
type DesktopConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`

	extra map[string]json.RawMessage
}

// MCPServerConfig represents a single MCP server configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options contains options for registering the server.
type Options struct {
	ConfigPath string // desktop client config file
	BinaryPath string // MCP server binary
	ModelPath  string // classifier artifact
}

// DesktopConfigPath returns the path of the desktop client's config file for goos.
func DesktopConfigPath(goos, home string, getenv func(string) string) (string, error) {
	var configDir string

	switch goos {
	case "darwin":
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "Claude")
		} else {
			configDir = filepath.Join(home, ".config", "Claude")
		}
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// LoadDesktopConfig reads the client configuration; a missing file yields an empty one.
func LoadDesktopConfig(configPath string) (*DesktopConfig, error) {
	cfg := &DesktopConfig{
		MCPServers: make(map[string]MCPServerConfig),
		extra:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.extra); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := cfg.extra["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &cfg.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(cfg.extra, "mcpServers")
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]MCPServerConfig)
	}

	return cfg, nil
}

// SaveDesktopConfig writes the configuration back, creating its directory if needed.
func SaveDesktopConfig(configPath string, cfg *DesktopConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := make(map[string]any, len(cfg.extra)+1)
	for k, v := range cfg.extra {
		out[k] = v
	}
	out["mcpServers"] = cfg.MCPServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Register adds or updates the liver risk server entry. Paths are stored
// absolute because the client starts the server from an unrelated directory.
func Register(opts Options) (MCPServerConfig, error) {
	binary, err := filepath.Abs(opts.BinaryPath)
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("resolve binary path: %w", err)
	}
	modelPath, err := filepath.Abs(opts.ModelPath)
	if err != nil {
		return MCPServerConfig{}, fmt.Errorf("resolve model path: %w", err)
	}

	cfg, err := LoadDesktopConfig(opts.ConfigPath)
	if err != nil {
		return MCPServerConfig{}, err
	}

	entry := MCPServerConfig{
		Command: binary,
		Env: map[string]string{
			envModelPath: modelPath,
			envLogOutput: "stderr",
		},
	}
	cfg.MCPServers[ServerName] = entry

	if err := SaveDesktopConfig(opts.ConfigPath, cfg); err != nil {
		return MCPServerConfig{}, err
	}
	return entry, nil
}

// Status represents the current registration status.
type Status struct {
	ConfigPath  string
	Registered  bool
	ServerPath  string
	ModelPath   string
	ModelLoaded bool
	Issues      []string
}

// GetStatus inspects the registration in configPath and test-loads its model.
func GetStatus(configPath string) (*Status, error) {
	status := &Status{ConfigPath: configPath}

	cfg, err := LoadDesktopConfig(configPath)
	if err != nil {
		return nil, err
	}

	entry, ok := cfg.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "Liver risk server is not registered")
		return status, nil
	}
	status.Registered = true
	status.ServerPath = entry.Command
	status.ModelPath = entry.Env[envModelPath]

	if info, err := os.Stat(entry.Command); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found: %s", entry.Command))
	} else if info.Mode()&0o111 == 0 {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", entry.Command))
	}

	if status.ModelPath == "" {
		status.Issues = append(status.Issues, "No model path configured; the server default will be used")
		return status, nil
	}

	if _, err := model.NewLoader(logging.NewNopLogger()).Load(status.ModelPath); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("Model cannot be loaded: %v", err))
	} else {
		status.ModelLoaded = true
	}

	return status, nil
}
