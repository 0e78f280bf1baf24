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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSong indicates a Song failed validation.
	ErrInvalidSong = errors.New("invalid song")

	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyArtist indicates the Artist field is empty.
	ErrEmptyArtist = errors.New("artist cannot be empty")

	// ErrEmptyLyrics indicates the song has neither full lyrics nor sections.
	ErrEmptyLyrics = errors.New("song must have full lyrics or at least one section")

	// ErrEmptySectionText indicates the section Text field is empty.
	ErrEmptySectionText = errors.New("section text cannot be empty")

	// ErrMissingSongId indicates a section has no owning song reference.
	ErrMissingSongId = errors.New("section must reference an owning song")

	// ErrInvalidSectionNumber indicates a section occurrence counter below 1.
	ErrInvalidSectionNumber = errors.New("section number must be >= 1")
)
