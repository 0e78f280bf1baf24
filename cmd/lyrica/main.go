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
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/lyrica"
	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/config"
	"github.com/poiesic/lyrica/fetch"
	"github.com/poiesic/lyrica/reembed"
	"github.com/poiesic/lyrica/search"
)

func main() {
	app := &cli.App{
		Name:  "lyrica",
		Usage: "Hybrid semantic search over song lyrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to lyrica.toml",
				Value:   "lyrica.toml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Index songs from a songs JSON file",
				Action: ingestCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Songs JSON file to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(storageFlags(),
					&cli.IntFlag{
						Name:    "results",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
					},
					&cli.Float64Flag{
						Name:  "genre-boost",
						Usage: "Multiplier for genre-matching results (0 disables)",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
				),
			},
			{
				Name:   "fetch",
				Usage:  "Fetch songs and lyrics from the catalog and lyrics providers",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Catalog playlist id (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "target",
						Usage: "Stop after this many unique songs (0 = all)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output songs JSON file",
						Value:   "songs_data.json",
					},
				},
			},
			{
				Name:   "enrich",
				Usage:  "Backfill genres and popularity on stored songs",
				Action: enrichCommand,
				Flags:  storageFlags(),
			},
			{
				Name:   "stats",
				Usage:  "Print index statistics",
				Action: statsCommand,
				Flags:  storageFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Rebuild every vector with a new embedding model",
				Action: reembedCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the badger database directory",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Storage backend (badger or qdrant)",
		},
		&cli.StringFlag{
			Name:  "qdrant-addr",
			Usage: "host:port of the qdrant gRPC endpoint",
		},
	}
}

// loadConfig reads lyrica.toml and overlays command-line flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if v := c.String("db"); v != "" {
		cfg.Storage.Path = v
	}
	if v := c.String("backend"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := c.String("qdrant-addr"); v != "" {
		cfg.Storage.QdrantAddr = v
	}
	if v := c.String("embedding-host"); v != "" {
		cfg.Embedding.Host = v
	}
	if v := c.String("embedding-model"); v != "" {
		cfg.Embedding.Model = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*lyrica.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	switch cfg.Storage.Backend {
	case config.BackendQdrant:
		return lyrica.NewQdrantDatabase(cfg.Storage.QdrantAddr, lyrica.WithAIConfig(aiConfig))
	default:
		return lyrica.NewDatabase(cfg.Storage.Path, lyrica.WithAIConfig(aiConfig))
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	documents, err := loadSongDocuments(c.String("file"))
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("no songs in %s", c.String("file"))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// The qdrant backend needs collections sized to the embedding
	// dimensionality before the first upsert.
	if cfg.Storage.Backend == config.BackendQdrant {
		probe, err := db.Provider().Embedder().EmbedText(ctx, "dimension probe")
		if err != nil {
			return fmt.Errorf("failed to probe embedding dimensions: %w", err)
		}
		if err := db.EnsureCollections(ctx, len(probe)); err != nil {
			return fmt.Errorf("failed to create collections: %w", err)
		}
	}

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Ingesting %d songs from %s\n", len(documents), c.String("file"))

	result, err := pipeline.Ingest(ctx, documents...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested: %d  Skipped: %d  Failed: %d  (dimensions: %d)\n",
		result.Ingested, result.Skipped, result.Failed, result.Dimensions)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	options := []search.Option{
		search.WithConfig(cfg.SearchConfig()),
		search.WithLexicon(cfg.Lexicon()),
	}
	if boost := c.Float64("genre-boost"); boost >= 0 {
		options = append(options, search.WithGenreBoost(float32(boost)))
	}

	searcher, err := db.NewSearcher(ctx, options...)
	if err != nil {
		return err
	}

	maxHits := c.Int("results")
	if maxHits <= 0 {
		maxHits = cfg.Search.MaxHits
	}

	results, err := searcher.Search(ctx, query, maxHits)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%2d. %s by %s  [combined %.3f, song %.3f, section %.3f]\n",
			i+1, hit.Title, hit.Artist, hit.Combined, hit.SongScore, hit.SectionScore)
		if len(hit.Genres) > 0 {
			fmt.Printf("    genres: %s\n", strings.Join(hit.Genres, ", "))
		}
		if hit.BestSection != nil {
			snippet := hit.BestSection.Text
			if len(snippet) > 120 {
				snippet = snippet[:120] + "..."
			}
			fmt.Printf("    best section (%s %d): %s\n",
				hit.BestSection.Type, hit.BestSection.Number, snippet)
		}
	}
	return nil
}

func fetchCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := fetch.NewCatalogClient(
		os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET"))
	if err != nil {
		return fmt.Errorf("catalog client: %w", err)
	}

	lyricsClient, err := fetch.NewLyricsClient(os.Getenv("GENIUS_ACCESS_TOKEN"))
	if err != nil {
		return fmt.Errorf("lyrics client: %w", err)
	}

	tracks, err := catalog.CollectFromPlaylists(ctx, c.StringSlice("playlist"), c.Int("target"))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Collected %d tracks, fetching lyrics\n", len(tracks))

	var entries []songEntry
	fetched, skipped := 0, 0
	for _, track := range tracks {
		result, err := lyricsClient.FetchLyrics(ctx, track.Title, track.Artist)
		if err != nil {
			slog.Warn("skipping song", "title", track.Title, "artist", track.Artist, "error", err)
			skipped++
			continue
		}

		var entry songEntry
		entry.Metadata.Title = result.Title
		entry.Metadata.Artist = result.Artist
		entry.Metadata.URL = result.URL
		entry.Metadata.ReleaseDate = result.ReleaseDate
		entry.Metadata.SourceId = result.SourceId
		entry.Metadata.ArtistPopularity = track.Popularity
		entry.FullLyrics = result.RawLyrics
		entries = append(entries, entry)
		fetched++
	}

	if err := saveSongEntries(c.String("output"), entries); err != nil {
		return err
	}
	fmt.Printf("Fetched %d songs (%d skipped) to %s\n", fetched, skipped, c.String("output"))
	return nil
}

func enrichCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	catalog, err := fetch.NewCatalogClient(
		os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET"))
	if err != nil {
		return fmt.Errorf("catalog client: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	enricher, err := fetch.NewEnricher(catalog, db.SongRepository(), db.SectionRepository())
	if err != nil {
		return err
	}

	result, err := enricher.EnrichAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Updated: %d  Skipped: %d  Failed: %d\n", result.Updated, result.Skipped, result.Failed)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	songCount, err := db.SongRepository().Count(ctx)
	if err != nil {
		return err
	}
	sectionCount, err := db.SectionRepository().Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Songs:    %d\n", songCount)
	fmt.Printf("Sections: %d\n", sectionCount)

	manifest, err := db.ManifestRepository().LoadManifest(ctx)
	if err != nil {
		return err
	}
	if manifest == nil {
		fmt.Println("Manifest: index not built yet")
		return nil
	}
	fmt.Printf("Model:      %s\n", manifest.EmbeddingModel)
	fmt.Printf("Dimensions: %d\n", manifest.Dimensions)
	fmt.Printf("Built:      %s\n", manifest.BuiltAt.Format(time.RFC3339))
	fmt.Printf("Updated:    %s\n", manifest.UpdatedAt.Format(time.RFC3339))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(os.Stderr)

	reembedder := db.NewReembedder(reembedConfig, os.Stderr)
	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setup(c *cli.Context) error {
	// Provider credentials can live in a .env file next to the binary.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}
	return setupLogger(c)
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
