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
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/docdex"
	"github.com/poiesic/docdex/ai"
	"github.com/poiesic/docdex/core"
	"github.com/poiesic/docdex/fetch"
	"github.com/poiesic/docdex/ingestion"
)

func main() {
	app := &cli.App{
		Name:  "docdex",
		Usage: "Document ingestion and vector indexing for uploaded PDFs",
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
				Usage:  "Register an uploaded PDF and run it through the ingestion pipeline",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "url",
						Usage:    "URL of the uploaded PDF",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name for the document (defaults to the URL)",
					},
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Owner identifier for the document",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Expected embedding dimensionality (0 accepts any)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of vectors per index write",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "embed-concurrency",
						Usage: "Concurrent embedding calls per document",
						Value: ingestion.DefaultEmbedConcurrency,
					},
					&cli.Int64Flag{
						Name:  "max-bytes",
						Usage: "Maximum accepted document size in bytes",
						Value: fetch.DefaultMaxBytes,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for each outbound call",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show the processing status of a document",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List documents belonging to an owner",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show documents with this status (PENDING, PROCESSING, SUCCESS, FAILED)",
					},
				},
			},
			{
				Name:   "remove",
				Usage:  "Delete a document record and clear its vector namespace",
				Action: removeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier",
						Required: true,
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
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := docdex.NewDatabase(c.String("db"),
		docdex.WithAIConfig(aiConfig),
		docdex.WithFetchOptions(
			fetch.WithMaxBytes(c.Int64("max-bytes")),
			fetch.WithTimeout(c.Duration("timeout")),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	name := c.String("name")
	if name == "" {
		name = c.String("url")
	}

	doc, err := db.Upload(ctx, name, c.String("owner"), c.String("url"))
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithEmbedConcurrency(c.Int("embed-concurrency")),
		ingestion.WithCallTimeout(c.Duration("timeout")),
	)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Document: %s\n", doc.Id)
	fmt.Fprintf(os.Stderr, "Source: %s\n", doc.SourceURL)
	fmt.Fprintln(os.Stderr)

	report, err := pipeline.Run(ctx, doc.Id, doc.SourceURL)
	if err != nil {
		if stage := ingestion.StageOf(err); stage != "" {
			return fmt.Errorf("ingestion failed in %s stage: %w", stage, err)
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("%s  status=%s pages=%d vectors=%d duration=%s\n",
		report.DocumentId, report.Status, report.Pages, report.Vectors, report.Duration.Round(time.Millisecond))
	return nil
}

func statusCommand(c *cli.Context) error {
	db, err := docdex.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	doc, err := db.Documents().GetDocument(context.Background(), c.String("id"))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	fmt.Printf("Id:      %s\n", doc.Id)
	fmt.Printf("Name:    %s\n", doc.Name)
	fmt.Printf("Owner:   %s\n", doc.OwnerId)
	fmt.Printf("Source:  %s\n", doc.SourceURL)
	fmt.Printf("Status:  %s\n", doc.Status)
	fmt.Printf("Created: %s\n", doc.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated: %s\n", doc.UpdatedAt.Format(time.RFC3339))
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := docdex.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	docs, err := db.Documents().ListByOwner(context.Background(), c.String("owner"))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if name := c.String("status"); name != "" {
		wanted, err := core.ParseStatus(strings.ToUpper(name))
		if err != nil {
			return err
		}
		docs = slices.DeleteFunc(docs, func(doc *core.Document) bool {
			return doc.Status != wanted
		})
	}

	for _, doc := range docs {
		fmt.Printf("%s  %-10s  %s\n", doc.Id, doc.Status, doc.Name)
	}
	fmt.Fprintf(os.Stderr, "%d document(s)\n", len(docs))
	return nil
}

func removeCommand(c *cli.Context) error {
	db, err := docdex.NewDatabase(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id := c.String("id")
	if err := db.Remove(context.Background(), id); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Removed %s and cleared its namespace\n", id)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
