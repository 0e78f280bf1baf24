package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newReembedApp() *cli.App {
	return &cli.App{
		Name: "lyrica",
		Commands: []*cli.Command{
			{
				Name:   "reembed",
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
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Value: 0,
					},
				),
			},
		},
	}
}

func TestReembedCommandFlags(t *testing.T) {
	app := newReembedApp()

	t.Run("embedding-model is required", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "reembed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})

	t.Run("batch-size must be positive", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "reembed",
			"--embedding-model", "test-model", "--batch-size", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("report-interval must be positive", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "reembed",
			"--embedding-model", "test-model", "--report-interval", "-5"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report-interval")
	})

	t.Run("max-retries must be positive", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "reembed",
			"--embedding-model", "test-model", "--max-retries", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-retries")
	})
}

func TestIngestCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "lyrica",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Required: true,
					},
				),
			},
		},
	}

	t.Run("file is required", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "ingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})

	t.Run("missing file fails", func(t *testing.T) {
		err := app.Run([]string{"lyrica", "ingest", "--file", "/nonexistent/songs.json"})
		require.Error(t, err)
	})
}

func TestSearchCommandRequiresQuery(t *testing.T) {
	app := &cli.App{
		Name: "lyrica",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags:  storageFlags(),
			},
		},
	}

	err := app.Run([]string{"lyrica", "search"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	app := &cli.App{
		Name: "lyrica",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "lyrica.toml"},
		},
		Commands: []*cli.Command{
			{
				Name: "probe",
				Flags: append(storageFlags(),
					&cli.StringFlag{Name: "embedding-host"},
					&cli.StringFlag{Name: "embedding-model"},
				),
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					require.NoError(t, err)
					assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
					assert.Equal(t, "custom-model", cfg.Embedding.Model)
					return nil
				},
			},
		},
	}

	err := app.Run([]string{"lyrica", "--config", filepath.Join(t.TempDir(), "absent.toml"),
		"probe", "--db", "/tmp/other.db", "--embedding-model", "custom-model"})
	require.NoError(t, err)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	app := &cli.App{
		Name: "lyrica",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "lyrica.toml"},
		},
		Commands: []*cli.Command{
			{
				Name:  "probe",
				Flags: storageFlags(),
				Action: func(c *cli.Context) error {
					_, err := loadConfig(c)
					return err
				},
			},
		},
	}

	err := app.Run([]string{"lyrica", "--config", filepath.Join(t.TempDir(), "absent.toml"),
		"probe", "--backend", "cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
