package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/bladeguard/internal/config"
	"github.com/zeusync/bladeguard/internal/core/observability/log"
	"github.com/zeusync/bladeguard/internal/injector"
	"github.com/zeusync/bladeguard/internal/replay"
	"github.com/zeusync/bladeguard/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bladesim",
		Usage: "replay scripted blade motion through the contact engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file (.yaml or .toml)",
				EnvVars: []string{"BLADESIM_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "force debug logging",
			},
		},
		Commands: []*cli.Command{
			replayCommand(),
			configCommand(),
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if c.Bool("debug") {
		cfg.Log.Level = log.LevelDebug.String()
	}
	return cfg, nil
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "run scenarios and report the engine's decisions",
		ArgsUsage: "SCENARIO...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 4, Usage: "scenarios replayed at once"},
			&cli.BoolFlag{Name: "realtime", Usage: "pace ticks at the scenario tick rate"},
			&cli.StringFlag{Name: "serve", Usage: "stream contact events over WebSocket on `ADDR`"},
		},
		Action: runReplay,
	}
}

func runReplay(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one scenario is required", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	scenarios := make([]*replay.Scenario, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		sc, err := replay.LoadScenarioFile(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	diag := server.DefaultServerConfig()
	if addr := c.String("serve"); addr != "" {
		diag.ListenAddr = addr
	}
	app, err := injector.InitializeApp(cfg, diag)
	if err != nil {
		return err
	}
	defer func() { _ = app.Log.Sync() }()

	if c.IsSet("serve") {
		if err := app.Diagnostics.Start(c.Context); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = app.Diagnostics.Stop(ctx)
		}()
	}

	runner := app.Runner
	if c.Bool("realtime") {
		runner = runner.Realtime(clock.New())
	}

	reports, err := runner.RunAll(c.Context, scenarios, c.Int("parallel"))
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	failed := 0
	for _, rep := range reports {
		if err := enc.Encode(rep); err != nil {
			return err
		}
		if !rep.Passed() {
			failed++
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d scenarios failed", failed, len(reports)), 1)
	}
	return nil
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(config.FormatYAML), Usage: "yaml or toml"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return config.Encode(c.App.Writer, cfg, config.Format(c.String("format")))
		},
	}
}
