package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/shopdb/internal/command"
	"github.com/joeycumines/shopdb/internal/config"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: %v\n", err)
		cfg = config.NewConfig()
	}

	settings, err := command.ResolveLogSettings(cfg)
	if err != nil {
		return err
	}
	logger, warnings, closer, err := command.NewLogger(settings, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	env := command.NewEnv(cfg, logger, warnings)
	env.Stdin = stdin
	defer env.FlushWarnings(stderr)

	if cfg.HasWarnings() {
		for _, issue := range cfg.Warnings {
			logger.Warn("config: "+issue, "path", configPath)
		}
	}

	registry := command.NewRegistry()
	helpCmd := command.NewHelpCommand(registry)
	registry.Register(helpCmd)
	registry.Register(command.NewVersionCommand(version))
	registry.Register(command.NewConfigCommand(cfg, configPath))
	registry.Register(command.NewInitCommand(configPath))
	registry.Register(command.NewSaveCommand(env))
	registry.Register(command.NewLoadCommand(env))
	registry.Register(command.NewRestoreCommand(env))
	registry.Register(command.NewSnapshotCommand(env))
	registry.Register(command.NewExportCommand(env))
	registry.Register(command.NewReportCommand(env))
	registry.Register(command.NewOrderCommand(env))

	if len(args) < 2 {
		return helpCmd.Execute(nil, stdout, stderr)
	}

	cmdName := args[1]
	if cmdName == "-h" || cmdName == "--help" {
		return helpCmd.Execute(nil, stdout, stderr)
	}

	cmd, err := registry.Get(cmdName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", cmdName)
		_, _ = fmt.Fprintln(stderr, "Use 'shopdb help' to see available commands.")
		return err
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", cmd.Usage())
		_, _ = fmt.Fprintf(stderr, "\n%s\n\n", cmd.Description())
		_, _ = fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	cmd.SetupFlags(fs)
	if err := fs.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return cmd.Execute(fs.Args(), stdout, stderr)
}
