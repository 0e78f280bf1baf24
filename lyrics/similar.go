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
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// TitleSimilarityThreshold is the minimum fuzzy ratio for two titles to
// be considered the same song. Lyric sites decorate titles with remaster
// tags and featured artists, so exact matching rejects too much.
const TitleSimilarityThreshold = 0.7

// TitleSimilarity returns the fuzzy match ratio between two normalized
// titles, in [0, 1].
func TitleSimilarity(a, b string) float64 {
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return matcher.Ratio()
}

// TitlesMatch reports whether two raw titles refer to the same song.
// Both are normalized before the fuzzy comparison.
func TitlesMatch(a, b string) bool {
	return TitleSimilarity(NormalizeTitle(a), NormalizeTitle(b)) >= TitleSimilarityThreshold
}

// ArtistsMatch reports whether two artist names refer to the same
// artist. Containment in either direction counts, so "Beyoncé" matches
// "Beyoncé feat. Jay-Z".
func ArtistsMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
