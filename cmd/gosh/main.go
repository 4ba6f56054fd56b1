package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"gosh/internal/config"
	"gosh/internal/history"
	"gosh/internal/plugin"
	"gosh/internal/shell"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: gosh [-hvp] [-c config]")
	fmt.Fprintln(os.Stderr, "   -h   print this message")
	fmt.Fprintln(os.Stderr, "   -v   print additional diagnostic information")
	fmt.Fprintln(os.Stderr, "   -p   do not emit a command prompt")
	fmt.Fprintln(os.Stderr, "   -c   path to the config file")
	os.Exit(1)
}

func main() {
	var (
		verbose  = flag.Bool("v", false, "print additional diagnostic information")
		noPrompt = flag.Bool("p", false, "do not emit a command prompt")
		cfgPath  = flag.String("c", "", "path to the config file")
	)
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if *cfgPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			*cfgPath = filepath.Join(home, ".gosh.yml")
		}
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	opts := []shell.Option{
		shell.WithInteractive(!*noPrompt && term.IsTerminal(int(os.Stdin.Fd()))),
	}

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		slog.Warn("history disabled", "error", err)
	} else {
		defer hist.Close()
		opts = append(opts, shell.WithHistory(hist))
	}

	if len(cfg.Plugins) > 0 {
		loaded, err := plugin.LoadAll(cfg.Plugins)
		if err != nil {
			slog.Warn("plugins disabled", "error", err)
		} else {
			cmds := make(map[string]shell.Plugin, len(loaded))
			for name, p := range loaded {
				cmds[name] = p
			}
			opts = append(opts, shell.WithPlugins(cmds))
		}
	}

	if err := shell.New(cfg, opts...).Run(); err != nil {
		slog.Error("shell", "error", err)
		os.Exit(1)
	}
}
