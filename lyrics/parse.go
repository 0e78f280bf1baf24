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


package lyrics

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedSection is one structural unit of a lyric sheet: a verse, a
// chorus, a bridge, or the whole text when no headers are present.
type ParsedSection struct {
	// Type is the lowercased header name, e.g. "verse", "chorus",
	// "bridge", "intro". Lyrics without headers produce a single
	// section of type "full".
	Type string

	// Number is the ordinal from the header ("Verse 2" -> 2), or 0 when
	// the header carries none.
	Number int

	// Text is the section's lyric text.
	Text string
}

var (
	headerPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	numberSuffix  = regexp.MustCompile(`\s*(\d+)\s*$`)
)

// ParseSections splits raw lyrics into sections on bracketed headers
// like [Verse 1] or [Chorus]. Text before the first header is ignored,
// matching how lyric sites front-load contributor notes. Lyrics with no
// headers at all come back as a single "full" section.
func ParseSections(rawLyrics string) []ParsedSection {
	var sections []ParsedSection

	headers := headerPattern.FindAllStringSubmatchIndex(rawLyrics, -1)
	for i, loc := range headers {
		header := rawLyrics[loc[2]:loc[3]]

		textStart := loc[1]
		textEnd := len(rawLyrics)
		if i+1 < len(headers) {
			textEnd = headers[i+1][0]
		}
		text := strings.TrimSpace(rawLyrics[textStart:textEnd])
		if text == "" {
			continue
		}

		sectionType, number := parseHeader(header)
		sections = append(sections, ParsedSection{
			Type:   sectionType,
			Number: number,
			Text:   text,
		})
	}

	if len(sections) == 0 {
		if trimmed := strings.TrimSpace(rawLyrics); trimmed != "" {
			sections = append(sections, ParsedSection{Type: "full", Text: trimmed})
		}
	}

	return sections
}

// parseHeader splits "Verse 2" into ("verse", 2) and "Chorus" into
// ("chorus", 0).
func parseHeader(header string) (string, int) {
	header = strings.TrimSpace(header)

	if m := numberSuffix.FindStringSubmatchIndex(header); m != nil {
		number, err := strconv.Atoi(header[m[2]:m[3]])
		if err == nil {
			return strings.ToLower(strings.TrimSpace(header[:m[0]])), number
		}
	}
	return strings.ToLower(header), 0
}
