package main

import (
	"context"
	"encoding/json"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/lyrica"
	"github.com/poiesic/lyrica/ingestion"
)

// demoSongs is a small built-in catalog of invented songs, enough to
// exercise search without any external providers.
var demoSongs = []*ingestion.SongDocument{
	{
		SourceId: "demo-1",
		Title:    "Paper Lanterns",
		Artist:   "The Harbor Lights",
		Genres:   []string{"indie rock"},
		RawLyrics: `[Verse 1]
Paper lanterns on the water
Drifting where the current bends
Every light a small surrender
Every flame a letter sent

[Chorus]
Let them drift away, let them drift away
All the words we never say
Burning soft across the bay`,
	},
	{
		SourceId: "demo-2",
		Title:    "Static on the Line",
		Artist:   "Marrow & Pine",
		Genres:   []string{"folk"},
		RawLyrics: `[Verse 1]
I called you from a payphone
Outside the county line
The rain was eating through the wires
And static swallowed every sign

[Chorus]
There's static on the line tonight
But I can hear you breathing
Static on the line tonight
And that's enough believing`,
	},
	{
		SourceId: "demo-3",
		Title:    "Gravity Pays Rent",
		Artist:   "Neon Cartographers",
		Genres:   []string{"synthpop", "electronic"},
		RawLyrics: `[Verse 1]
The city hums in circuit board blue
Every window is a pixel of you
I mapped the streets in ultraviolet
Found your name where the grid goes quiet

[Chorus]
Gravity pays rent in my chest
Every time you leave it collects
I'd float away but I'm in debt
To the weight of you I can't forget

[Bridge]
Turn the dial down low
Let the neon overflow`,
	},
	{
		SourceId: "demo-4",
		Title:    "Winter Engine",
		Artist:   "The Harbor Lights",
		Genres:   []string{"indie rock"},
		RawLyrics: `[Verse 1]
The old truck coughs in the cold
Frost on the windshield like lace
You scrape a porthole with your sleeve
Just big enough to see my face

[Chorus]
Keep the winter engine running
Keep the heater set to high
We're not going anywhere
But at least we're warm inside`,
	},
	{
		SourceId: "demo-5",
		Title:    "Salt and Circuitry",
		Artist:   "Neon Cartographers",
		Genres:   []string{"synthpop"},
		RawLyrics: `[Verse 1]
Ocean spray on a server farm
Barnacles on the fiber line
The tide comes in with a software update
Nobody reads the terms this time

[Chorus]
Salt and circuitry, you and me
Corroding beautifully
Salt and circuitry, wait and see
What rust sets free`,
	},
}

var (
	seedFileName = flag.String("src", "", "songs JSON file of seed data")
	dbPath       = flag.String("db", "./lyrica.db", "database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// songsFromFile returns an iterator over documents in a songs JSON file.
// The file uses the same schema the lyrica fetch command writes.
func songsFromFile(filename string) (iter.Seq[*ingestion.SongDocument], error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		Metadata struct {
			Title            string   `json:"title"`
			Artist           string   `json:"artist"`
			URL              string   `json:"url"`
			ReleaseDate      string   `json:"release_date"`
			SourceId         string   `json:"source_id"`
			Genres           []string `json:"genres"`
			ArtistPopularity int      `json:"artist_popularity"`
		} `json:"metadata"`
		FullLyrics string `json:"full_lyrics"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return func(yield func(*ingestion.SongDocument) bool) {
		for _, entry := range entries {
			doc := &ingestion.SongDocument{
				SourceId:    entry.Metadata.SourceId,
				Title:       entry.Metadata.Title,
				Artist:      entry.Metadata.Artist,
				Genres:      entry.Metadata.Genres,
				Popularity:  entry.Metadata.ArtistPopularity,
				ReleaseDate: entry.Metadata.ReleaseDate,
				URL:         entry.Metadata.URL,
				RawLyrics:   entry.FullLyrics,
			}
			if !yield(doc) {
				return
			}
		}
	}, nil
}

// songsFromSlice returns an iterator over a slice of documents.
func songsFromSlice(documents []*ingestion.SongDocument) iter.Seq[*ingestion.SongDocument] {
	return func(yield func(*ingestion.SongDocument) bool) {
		for _, doc := range documents {
			if !yield(doc) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests songs in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[*ingestion.SongDocument], batchSize int) error {
	batch := make([]*ingestion.SongDocument, 0, batchSize)

	for doc := range source {
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if _, err := pipeline.Ingest(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining documents
	if len(batch) > 0 {
		if _, err := pipeline.Ingest(ctx, batch...); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	db, err := lyrica.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[*ingestion.SongDocument]
	if seedFileName != nil && *seedFileName != "" {
		source, err = songsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = songsFromSlice(demoSongs)
	}

	// Ingest in batches of 5
	if err := ingestBatched(ctx, pipeline, source, 5); err != nil {
		panic(err)
	}
}
