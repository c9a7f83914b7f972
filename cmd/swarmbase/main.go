// ABOUTME: CLI entrypoint for swarmbase: generate, validate, chart and push swarms, or serve the local backend.
// ABOUTME: Parses flags with kong, layers them over config.Load, and configures zerolog before running a command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/2389-research/swarmbase/config"
	"github.com/2389-research/swarmbase/logging"
)

var version = "dev"

// CLI is the root command.
type CLI struct {
	Config    string `short:"c" help:"Path to swarmbase.yaml." type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)."`
	LogFormat string `name:"log-format" help:"Log format (console, json)."`
	APIURL    string `name:"api-url" help:"Backend base URL."`
	Token     string `help:"Bearer token for the backend."`

	Export   ExportCmd   `cmd:"" help:"Generate a swarm's project files for a target framework."`
	Validate ValidateCmd `cmd:"" help:"Lint a swarm without generating anything."`
	Chart    ChartCmd    `cmd:"" help:"Print a swarm as Graphviz DOT or a swarm.yaml manifest."`
	Push     PushCmd     `cmd:"" help:"Create the tools, agents and swarm of a manifest on the backend."`
	Serve    ServeCmd    `cmd:"" help:"Run the local SQLite-backed backend."`
	Models   ModelsCmd   `cmd:"" help:"List models known to the langchain target."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// app is bound into every command's Run.
type app struct {
	ctx context.Context
	cfg *config.Config
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and executes one command. Returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("swarmbase"),
		kong.Description("Build multi-agent swarms and generate runnable projects for agent frameworks."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help and friends.
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	cfg, err := cli.resolveConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := kctx.Run(&app{ctx: ctx, cfg: cfg, out: stdout}); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// resolveConfig loads the layered config and applies flag overrides.
func (c *CLI) resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if c.APIURL != "" {
		cfg.APIURL = c.APIURL
	}
	if c.Token != "" {
		cfg.AuthToken = c.Token
	}
	return cfg, nil
}
