package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	erpforms "github.com/goliatone/go-erpforms"
	"github.com/goliatone/go-erpforms/internal/prompt"
)

const usage = `usage: erpform <command> [flags]

commands:
  forms        list the built-in forms
  fill         fill a form interactively, submit it and optionally export it
  export       fill a form from a values file and write the printable document
  check-file   check files against the upload policy
`

type command func(ctx context.Context, args []string, env *environment) error

var commands = map[string]command{
	"forms":      runForms,
	"fill":       runFill,
	"export":     runExport,
	"check-file": runCheckFile,
}

// environment carries the process streams so commands stay testable.
type environment struct {
	stdout io.Writer
	stderr io.Writer
	driver prompt.Driver
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env := &environment{stdout: os.Stdout, stderr: os.Stderr, driver: prompt.NewSurveyDriver(os.Stdout)}
	if err := run(ctx, os.Args[1:], env); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "erpform: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, env *environment) error {
	if len(args) == 0 {
		fmt.Fprint(env.stderr, usage)
		return flag.ErrHelp
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(env.stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:], env)
}

// commonFlags are shared by every command that builds a page.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (yaml, toml or json)")
	fs.StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func (c *commonFlags) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.logLevel))); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q", c.logLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func (c *commonFlags) config() (erpforms.Config, error) {
	if c.configPath == "" {
		return erpforms.DefaultConfig(), nil
	}
	return erpforms.LoadConfig(c.configPath)
}
