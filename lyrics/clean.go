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
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	whitespace    = regexp.MustCompile(`\s+`)
	apostrophes   = regexp.MustCompile("['`´’‘]")
	featTag       = regexp.MustCompile(`\(feat\..*?\)`)
)

// Clean normalizes lyric text for embedding: parenthetical asides are
// dropped (usually ad-libs and production notes), whitespace collapses
// to single spaces, and curly quotes become straight ones.
func Clean(text string) string {
	text = parenthetical.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	return replacer.Replace(text)
}

// NormalizeTitle canonicalizes a song title for comparison across
// catalogs: NFKD unicode normalization, lowercasing, apostrophe
// removal, and stripping of "(feat. ...)" tags.
func NormalizeTitle(title string) string {
	title = norm.NFKD.String(title)
	title = strings.ToLower(strings.TrimSpace(title))
	title = apostrophes.ReplaceAllString(title, "")
	title = featTag.ReplaceAllString(title, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(title, " "))
}
