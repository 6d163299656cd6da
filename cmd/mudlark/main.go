package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mudlark/mudlark/internal/config"
	"github.com/mudlark/mudlark/internal/ui"
)

func main() {
	configFlag := flag.String("config", "", "Config file path (default: XDG config dir)")
	streamFlag := flag.String("stream", "", "Show only lines from this stream (e.g. combat)")
	initFlag := flag.Bool("init-config", false, "Write a default config file and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mudlark [-config path] [-stream name] <transcript>\n")
		fmt.Fprintf(os.Stderr, "  -config\tConfig file path\n")
		fmt.Fprintf(os.Stderr, "  -stream\tInitial stream filter (e.g. combat, loot)\n")
		fmt.Fprintf(os.Stderr, "  -init-config\tWrite a default config file and exit\n")
	}
	flag.Parse()

	if *initFlag {
		if err := config.Save(config.DefaultConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(config.GetConfigPath())
		return
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := ui.ModelOptions{
		TranscriptPath: flag.Arg(0),
		ConfigPath:     *configFlag,
		Stream:         *streamFlag,
		Logger:         logger,
	}

	model, err := ui.NewModelWithOptions(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes structured logs to a state file; stderr belongs to
// the alternate screen while the TUI runs.
func newLogger() (*zap.Logger, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return zap.NewNop(), nil
		}
		dir = filepath.Join(home, ".local", "state")
	}
	dir = filepath.Join(dir, "mudlark")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "mudlark.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	return cfg.Build()
}
