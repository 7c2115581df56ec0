package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// DefaultModelPath is used when register is run without --model.
const DefaultModelPath = "models/logistic_regression_hepB_model.json"

// CLI provides command-line interface for setup operations.
type CLI struct {
	reader *bufio.Reader
	out    io.Writer

	goos       string
	home       func() (string, error)
	getenv     func(string) string
	executable func() (string, error)
}

// NewCLI creates a new setup CLI reading answers from in and writing to out.
func NewCLI(in io.Reader, out io.Writer) *CLI {
	return &CLI{
		reader:     bufio.NewReader(in),
		out:        out,
		goos:       runtime.GOOS,
		home:       os.UserHomeDir,
		getenv:     os.Getenv,
		executable: os.Executable,
	}
}

// Run executes the setup command based on the provided arguments.
func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		return c.showHelp()
	}

	switch args[0] {
	case "claude-desktop":
		return c.register(args[1:])
	case "status":
		return c.showStatus(args[1:])
	case "help", "--help", "-h":
		return c.showHelp()
	default:
		fmt.Fprintf(c.out, "Unknown command: %s\n\n", args[0])
		return c.showHelp()
	}
}

func (c *CLI) showHelp() error {
	fmt.Fprint(c.out, `
Liver Risk MCP Server Setup

Usage:
  mcp-server setup <command> [options]

Commands:
  claude-desktop  Register the server with Claude Desktop
  status          Show current registration and check the model

Options:
  --binary, -b    Server binary (default: this executable)
  --model, -m     Model artifact (default: `+DefaultModelPath+`)
  --config, -c    Claude Desktop config file (default: platform location)
  --auto, -y      Do not ask for confirmation

Examples:
  mcp-server setup claude-desktop --model /opt/liver-risk/liver_disease.json
  mcp-server setup status
`)
	return nil
}

type flags struct {
	binary string
	model  string
	config string
	auto   bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--auto", "-y":
			f.auto = true
			continue
		case "--binary", "-b", "--model", "-m", "--config", "-c":
		default:
			return f, fmt.Errorf("unknown option: %s", args[i])
		}
		if i+1 >= len(args) {
			return f, fmt.Errorf("option %s requires a value", args[i])
		}
		switch args[i] {
		case "--binary", "-b":
			f.binary = args[i+1]
		case "--model", "-m":
			f.model = args[i+1]
		default:
			f.config = args[i+1]
		}
		i++
	}
	return f, nil
}

func (c *CLI) configPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := c.home()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return DesktopConfigPath(c.goos, home, c.getenv)
}

func (c *CLI) register(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	opts := Options{BinaryPath: f.binary, ModelPath: f.model}
	if opts.BinaryPath == "" {
		if opts.BinaryPath, err = c.executable(); err != nil {
			return fmt.Errorf("failed to locate server binary: %w", err)
		}
	}
	if opts.ModelPath == "" {
		opts.ModelPath = DefaultModelPath
	}
	if opts.ConfigPath, err = c.configPath(f.config); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Claude Desktop Configuration")
	fmt.Fprintln(c.out, "============================")
	fmt.Fprintf(c.out, "Config file: %s\n", opts.ConfigPath)
	fmt.Fprintf(c.out, "Server binary: %s\n", opts.BinaryPath)
	fmt.Fprintf(c.out, "Model: %s\n", opts.ModelPath)
	fmt.Fprintln(c.out)

	if !f.auto {
		fmt.Fprint(c.out, "Proceed with configuration? [Y/n]: ")
		response, err := c.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read answer: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Configuration cancelled.")
			return nil
		}
	}

	if _, err := Register(opts); err != nil {
		return fmt.Errorf("failed to configure Claude Desktop: %w", err)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "✓ Claude Desktop configured successfully!")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Next steps:")
	fmt.Fprintln(c.out, "  1. Restart Claude Desktop to load the new configuration")
	fmt.Fprintln(c.out, "  2. Run: mcp-server setup status")
	fmt.Fprintln(c.out)
	return nil
}

func (c *CLI) showStatus(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	configPath, err := c.configPath(f.config)
	if err != nil {
		return err
	}

	status, err := GetStatus(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Liver Risk MCP Server Status")
	fmt.Fprintln(c.out, "============================")
	fmt.Fprintf(c.out, "Config path: %s\n", status.ConfigPath)
	if status.Registered {
		fmt.Fprintln(c.out, "Registration: ✓ Configured")
		fmt.Fprintf(c.out, "Binary: %s\n", status.ServerPath)
		fmt.Fprintf(c.out, "Model: %s\n", status.ModelPath)
	} else {
		fmt.Fprintln(c.out, "Registration: ✗ Not configured")
	}
	if status.ModelLoaded {
		fmt.Fprintln(c.out, "Model check: ✓ Loads")
	}

	if len(status.Issues) > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Issues:")
		for _, issue := range status.Issues {
			fmt.Fprintf(c.out, "  ⚠ %s\n", issue)
		}
	}
	fmt.Fprintln(c.out)
	return nil
}
