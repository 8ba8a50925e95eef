// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/dredge"
	"github.com/poiesic/dredge/ingestion"
)

func main() {
	app := &cli.App{
		Name:  "dredge",
		Usage: "Ingest carved-file streams into a searchable document index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Read a carve stream and index a document per record",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB index directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Carve stream file to read (defaults to stdin)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (defaults to half the CPUs)",
					},
					&cli.Uint64Flag{
						Name:  "threshold-mb",
						Usage: "Content size in MiB above which records spill to disk",
						Value: 16,
					},
					&cli.StringFlag{
						Name:  "temp-dir",
						Usage: "Directory for spill files (defaults to the system temp dir)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "File-type classifier model file (defaults to a built-in text/binary model)",
					},
					&cli.DurationFlag{
						Name:  "drain-grace",
						Usage: "How long to wait for in-flight records after the stream ends",
						Value: ingestion.DefaultDrainGrace,
					},
				},
			},
			{
				Name:   "pack",
				Usage:  "Frame local files into a carve stream for ingestion",
				Action: packCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Stream file to write (defaults to stdout)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := io.Reader(os.Stdin)
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input stream: %w", err)
		}
		defer f.Close()
		input = f
	}

	var dbOpts []dredge.DatabaseOption
	if model := c.String("model"); model != "" {
		dbOpts = append(dbOpts, dredge.WithModelFile(model))
	}
	db, err := dredge.NewDatabase(c.String("db"), dbOpts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithLargeFileThreshold(c.Uint64("threshold-mb") * 1024 * 1024),
		ingestion.WithDrainGrace(c.Duration("drain-grace")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithWorkers(workers))
	}
	if dir := c.String("temp-dir"); dir != "" {
		opts = append(opts, ingestion.WithTempDir(dir))
	}

	engine, err := db.NewIngestionEngine(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion engine: %w", err)
	}

	started := time.Now()
	ingestErr := engine.Ingest(ctx, input)

	p := engine.Progress()
	fmt.Fprintf(os.Stderr, "Records: %d\n", p.FilesRead)
	fmt.Fprintf(os.Stderr, "Stream bytes: %d\n", p.BytesRead)
	fmt.Fprintf(os.Stderr, "Content bytes: %d\n", p.FileBytesRead)
	fmt.Fprintf(os.Stderr, "Elapsed: %s\n", time.Since(started).Round(time.Millisecond))

	if ingestErr != nil {
		return fmt.Errorf("ingestion failed: %w", ingestErr)
	}
	return nil
}

func packCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or directory to pack is required")
	}

	output := io.Writer(os.Stdout)
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output stream: %w", err)
		}
		defer f.Close()
		output = f
	}

	var packed int
	for _, root := range c.Args().Slice() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if err := packFile(output, path); err != nil {
				return err
			}
			packed++
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to pack %s: %w", root, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Packed %d files\n", packed)
	return nil
}

func packFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(map[string]any{
		"name": filepath.Base(path),
		"path": path,
		"size": info.Size(),
	})
	if err != nil {
		return err
	}

	return ingestion.WriteFrame(w, metadata, f, uint64(info.Size()))
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
