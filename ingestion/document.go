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


package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/lyrics"
)

// SongDocument is the raw input to the pipeline: catalog metadata plus
// an unparsed lyric sheet.
type SongDocument struct {
	SourceId    string
	Title       string
	Artist      string
	Genres      []string
	Popularity  int
	ReleaseDate string
	URL         string
	RawLyrics   string
}

// build converts a document into a song record and its section records,
// ready for embedding. Section text is cleaned; position follows lyric
// order.
func (d *SongDocument) build() (*core.Song, []*core.Section, error) {
	if strings.TrimSpace(d.SourceId) == "" {
		return nil, nil, fmt.Errorf("document %q/%q has no source id", d.Artist, d.Title)
	}

	song := &core.Song{
		Id:          core.SongIDFromSource(d.SourceId),
		SourceId:    d.SourceId,
		Title:       strings.TrimSpace(d.Title),
		Artist:      strings.TrimSpace(d.Artist),
		Genres:      d.Genres,
		Popularity:  d.Popularity,
		ReleaseDate: d.ReleaseDate,
		URL:         d.URL,
		FullLyrics:  lyrics.Clean(d.RawLyrics),
	}
	if err := core.ValidateSong(song); err != nil {
		return nil, nil, err
	}

	parsed := lyrics.ParseSections(d.RawLyrics)
	sections := make([]*core.Section, 0, len(parsed))
	for position, p := range parsed {
		text := lyrics.Clean(p.Text)
		if text == "" {
			continue
		}
		number := p.Number
		if number == 0 {
			number = position + 1
		}
		section := &core.Section{
			Id:       core.SectionIDFor(song.Id, position),
			SongId:   song.Id,
			Title:    song.Title,
			Artist:   song.Artist,
			Genres:   song.Genres,
			Type:     p.Type,
			Number:   number,
			Position: position,
			Text:     text,
		}
		if err := core.ValidateSection(section); err != nil {
			return nil, nil, err
		}
		sections = append(sections, section)
	}

	return song, sections, nil
}
