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
	"encoding/json"
	"fmt"
	"os"

	"github.com/poiesic/lyrica/ingestion"
)

// songEntry is one record of a songs JSON file: provider metadata plus
// the raw lyric text. The shape matches what the fetch command writes.
type songEntry struct {
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

// loadSongDocuments reads a songs JSON file into ingestion documents.
func loadSongDocuments(path string) ([]*ingestion.SongDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []songEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	documents := make([]*ingestion.SongDocument, 0, len(entries))
	for _, entry := range entries {
		documents = append(documents, &ingestion.SongDocument{
			SourceId:    entry.Metadata.SourceId,
			Title:       entry.Metadata.Title,
			Artist:      entry.Metadata.Artist,
			Genres:      entry.Metadata.Genres,
			Popularity:  entry.Metadata.ArtistPopularity,
			ReleaseDate: entry.Metadata.ReleaseDate,
			URL:         entry.Metadata.URL,
			RawLyrics:   entry.FullLyrics,
		})
	}
	return documents, nil
}

// saveSongEntries writes fetched songs to a JSON file the ingest
// command can read back.
func saveSongEntries(path string, entries []songEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
