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


package core

import "fmt"

// ValidateSong validates a Song according to domain rules.
//
// Validation rules:
//   - Title and Artist must not be empty
//   - FullLyrics must be non-empty (a song with zero sections is valid,
//     but a song with no lyric text at all cannot be indexed)
//
// NOT validated (populated by the ingestion pipeline):
//   - Vector (can be empty until embedded)
//   - Genres and Popularity (optional metadata)
func ValidateSong(song *Song) error {
	if song == nil {
		return fmt.Errorf("%w: song is nil", ErrInvalidSong)
	}

	if song.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyTitle)
	}

	if song.Artist == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyArtist)
	}

	if song.FullLyrics == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSong, ErrEmptyLyrics)
	}

	return nil
}

// ValidateSection validates a Section according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SongId must reference an owning song
//   - Number must be >= 1 (1-based occurrence counter)
//
// NOT validated (populated by the ingestion pipeline):
//   - Vector (can be empty until embedded)
func ValidateSection(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if section.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptySectionText)
	}

	if section.SongId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrMissingSongId)
	}

	if section.Number < 1 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidSection, ErrInvalidSectionNumber, section.Number)
	}

	return nil
}
