package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/zkcodehub/sitectl/internal/config"
	"github.com/zkcodehub/sitectl/internal/daemon"
	"github.com/zkcodehub/sitectl/internal/lint"
	"github.com/zkcodehub/sitectl/internal/pipeline"
	"github.com/zkcodehub/sitectl/internal/version"
	"github.com/zkcodehub/sitectl/internal/workspace"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"site.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output      string `short:"o" help:"Output directory override"`
		Incremental bool   `short:"i" help:"Update existing repository clones instead of recloning"`
	} `cmd:"" help:"Build the site from the content corpus"`

	Lint struct {
		Format string `short:"f" help:"Output format (text or json)"`
	} `cmd:"" help:"Lint the content corpus without building"`

	Verify struct{} `cmd:"" help:"Verify code-import directives against their repositories"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Daemon struct {
		DataDir string `short:"d" help:"Data directory override for daemon state"`
	} `cmd:"" help:"Run continuously: watch, rebuild, serve build status"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch kctx.Command() {
	case "build":
		cfg := loadConfig()
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "lint":
		cfg := loadConfig()
		if err := runLint(cfg); err != nil {
			slog.Error("Lint failed", "error", err)
			os.Exit(1)
		}
	case "verify":
		cfg := loadConfig()
		if err := runVerify(cfg); err != nil {
			slog.Error("Verify failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	case "daemon":
		cfg := loadConfig()
		if CLI.Daemon.DataDir != "" {
			cfg.Daemon.DataDir = CLI.Daemon.DataDir
		}
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitectl %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func runBuild(cfg *config.Config) error {
	outputDir := cfg.Output.Directory
	if CLI.Build.Output != "" {
		outputDir = CLI.Build.Output
	}

	slog.Info("Starting site build",
		"content", cfg.Content.Dir,
		"output", outputDir,
		"repositories", len(cfg.Repositories),
		"incremental", CLI.Build.Incremental)

	wsManager := workspace.NewManager("")
	if err := wsManager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := wsManager.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", "error", err)
		}
	}()

	bc := &pipeline.BuildContext{
		Config:       cfg,
		OutputDir:    outputDir,
		WorkspaceDir: wsManager.Path(),
		Incremental:  CLI.Build.Incremental,
	}

	runner := pipeline.NewRunner(nil, nil)
	if err := runner.Run(context.Background(), pipeline.DefaultStages(nil), bc); err != nil {
		return err
	}

	slog.Info("Site built",
		"build_id", bc.Report.BuildID,
		"site_url", bc.Report.SiteURL,
		"pages", bc.Report.Pages,
		"assets", bc.Report.Assets,
		"duration", bc.Report.Duration)
	return nil
}

func runLint(cfg *config.Config) error {
	format := cfg.Lint.Format
	if CLI.Lint.Format != "" {
		format = CLI.Lint.Format
	}

	knownRepos := make(map[string]struct{}, len(cfg.Repositories))
	for _, repo := range cfg.Repositories {
		knownRepos[repo.Name] = struct{}{}
	}

	linter := lint.NewLinter(knownRepos)
	result, err := linter.LintPath(cfg.Content.Dir)
	if err != nil {
		return err
	}

	formatter := lint.NewFormatter(format)
	if err := formatter.Format(os.Stdout, result, cfg.Content.Dir); err != nil {
		return err
	}

	if result.HasErrors() {
		return fmt.Errorf("lint found errors")
	}
	return nil
}

// runVerify runs the build pipeline up to directive verification: repositories
// are cloned and every code-import path is checked, but nothing is rendered.
func runVerify(cfg *config.Config) error {
	wsManager := workspace.NewManager("")
	if err := wsManager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := wsManager.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", "error", err)
		}
	}()

	bc := &pipeline.BuildContext{
		Config:       cfg,
		WorkspaceDir: wsManager.Path(),
	}

	stages := []pipeline.Stage{
		&pipeline.CloneStage{},
		&pipeline.DiscoverStage{},
		&pipeline.ImportsStage{},
	}
	runner := pipeline.NewRunner(nil, nil)
	if err := runner.Run(context.Background(), stages, bc); err != nil {
		return err
	}

	slog.Info("All code-import directives verified",
		"pages", len(bc.Pages),
		"directives", len(bc.Directives),
		"repositories", len(bc.RepoPaths))
	return nil
}

func runDaemon(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	slog.Info("Daemon started, waiting for shutdown signal")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop daemon: %w", err)
	}

	slog.Info("Daemon stopped")
	return nil
}
