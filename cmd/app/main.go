package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ifcstep/internal"
	"github.com/starford/ifcstep/internal/fileservice"
	"github.com/starford/ifcstep/internal/index"
	"github.com/starford/ifcstep/internal/mcpserver"
	"github.com/starford/ifcstep/internal/step"
	"github.com/starford/ifcstep/internal/storage"
	pkgconfig "github.com/starford/ifcstep/pkg/config"
)

// loadConfig reads the config file. Offline commands fall back to defaults
// when it is missing.
func loadConfig(cmd *cli.Command, required bool) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	load := pkgconfig.LoadIfExists[internal.Config]
	if required {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("strict") {
		cfg.Parse.Strict = cmd.Bool("strict")
	}
	if cmd.IsSet("workers") {
		cfg.Parse.DecodeWorkers = int(cmd.Int("workers"))
		if err := cfg.Parse.Validate(); err != nil {
			return nil, fmt.Errorf("workers: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func roundtrip(_ context.Context, cmd *cli.Command) error {
	in := cmd.Args().Get(0)
	if in == "" {
		return errors.New("roundtrip: input file is required")
	}
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	f, err := step.ParseWithOptions(string(data), step.ParseOptions{Strict: cfg.Parse.Strict})
	if err != nil {
		return fmt.Errorf("roundtrip: %s: %w", in, err)
	}
	out := f.String()

	if target := cmd.Args().Get(1); target != "" {
		dir, err := storage.NewFS(filepath.Dir(target))
		if err != nil {
			return fmt.Errorf("roundtrip: %w", err)
		}
		if err := dir.Write(filepath.Base(target), []byte(out)); err != nil {
			return fmt.Errorf("roundtrip: %w", err)
		}
	}

	if at := firstDiff(string(data), out); at >= 0 {
		return fmt.Errorf("roundtrip: %s: output differs from input at byte %d", in, at)
	}
	fmt.Fprintf(os.Stdout, "%s: %d records, output identical (%d bytes)\n", in, f.Data.Len(), len(out))
	return nil
}

// firstDiff returns the offset of the first differing byte, or -1.
func firstDiff(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func verify(ctx context.Context, cmd *cli.Command) error {
	in := cmd.Args().Get(0)
	if in == "" {
		return errors.New("verify: file is required")
	}
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	rep, err := fileservice.Check(ctx, in, data, cfg.Parse.Options())
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(os.Stdout, "file:       %s\n", rep.Path)
		fmt.Fprintf(os.Stdout, "schema:     %s\n", rep.Schema)
		fmt.Fprintf(os.Stdout, "records:    %d (%d decodable)\n", rep.Entities, rep.Known)
		fmt.Fprintf(os.Stdout, "round trip: %t\n", rep.RoundTrip)
		if len(rep.Unknown) > 0 {
			fmt.Fprintf(os.Stdout, "unknown:    %s\n", strings.Join(rep.Unknown, ", "))
		}
		for _, p := range rep.Problems {
			fmt.Fprintf(os.Stdout, "problem:    %s\n", p)
		}
	}

	if !rep.OK() {
		return fmt.Errorf("verify: %s: %d problems", in, len(rep.Problems))
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := internal.NewLogger(cfg.App.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	lib, err := internal.OpenLibrary(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lib.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(watchCtx, lib.DB, lib.Store, cfg.Library.Path, cfg.Parse.Options(), logger, nil); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
	}()

	svc := fileservice.NewService(lib.Store, lib.DB, cfg.Parse.Options())
	return mcpserver.New(svc).ServeStdio()
}

// parseFlags returns fresh flag values; cli flags keep state per command.
func parseFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Report malformed optional attributes as decode errors instead of keeping their text verbatim",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Parallel decode workers (1-64)",
		},
	}, extra...)
}

func main() {

	cmd := &cli.Command{
		Name:   "ifcstep",
		Usage:  "Read, verify and serve ISO-10303-21 (STEP/IFC) exchange files",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the library over HTTP",
				Action: serve,
			},
			{
				Name:      "roundtrip",
				Usage:     "Parse a file, print it back and report whether the bytes match",
				ArgsUsage: "<in> [out]",
				Flags:     parseFlags(),
				Action:    roundtrip,
			},
			{
				Name:      "verify",
				Usage:     "Parse a file, resolve references and decode known records",
				ArgsUsage: "<file>",
				Flags: parseFlags(&cli.BoolFlag{
					Name:  "json",
					Usage: "Print the report as JSON",
				}),
				Action: verify,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the library as an MCP server over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
