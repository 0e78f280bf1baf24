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


package search

import "strings"

// Lexicon is the set of genre phrases recognized in queries. Phrases are
// matched against whole words, longest phrase first, so "indie rock"
// wins over both "indie" and "rock" when all three are in the lexicon.
type Lexicon struct {
	phrases map[string]bool
	maxLen  int
}

// NewLexicon builds a lexicon from genre phrases. Phrases are lowercased;
// multi-word phrases are matched as contiguous word sequences.
func NewLexicon(phrases ...string) *Lexicon {
	l := &Lexicon{phrases: make(map[string]bool, len(phrases))}
	for _, phrase := range phrases {
		normalized := strings.Join(tokenize(phrase), " ")
		if normalized == "" {
			continue
		}
		l.phrases[normalized] = true
		if n := len(strings.Fields(normalized)); n > l.maxLen {
			l.maxLen = n
		}
	}
	return l
}

// With returns a new lexicon containing this lexicon's phrases plus
// the given extras. The receiver is unchanged.
func (l *Lexicon) With(phrases ...string) *Lexicon {
	combined := make([]string, 0, len(l.phrases)+len(phrases))
	for phrase := range l.phrases {
		combined = append(combined, phrase)
	}
	combined = append(combined, phrases...)
	return NewLexicon(combined...)
}

// Contains reports whether the phrase is a known genre.
func (l *Lexicon) Contains(phrase string) bool {
	return l.phrases[strings.Join(tokenize(phrase), " ")]
}

// Len returns the number of phrases in the lexicon.
func (l *Lexicon) Len() int {
	return len(l.phrases)
}

// Extract finds genre terms in a raw query and returns them along with
// the residual text (the query with genre terms removed). Longer phrases
// are consumed before shorter ones and each word is consumed at most
// once, so "indie rock songs" yields the term "indie rock", never a
// separate "rock". Terms are returned in order of first appearance,
// deduplicated.
func (l *Lexicon) Extract(raw string) (terms []string, residual string) {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return nil, ""
	}

	consumed := make([]bool, len(tokens))
	type span struct {
		start int
		term  string
	}
	var spans []span

	for n := l.maxLen; n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			free := true
			for j := i; j < i+n; j++ {
				if consumed[j] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			candidate := strings.Join(tokens[i:i+n], " ")
			if !l.phrases[candidate] {
				continue
			}
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}
			spans = append(spans, span{start: i, term: candidate})
		}
	}

	// Order terms by position, drop duplicates.
	seen := make(map[string]bool, len(spans))
	for i := range tokens {
		for _, s := range spans {
			if s.start == i && !seen[s.term] {
				seen[s.term] = true
				terms = append(terms, s.term)
			}
		}
	}

	rest := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if !consumed[i] {
			rest = append(rest, tok)
		}
	}
	return terms, strings.Join(rest, " ")
}

// DefaultLexicon returns the built-in genre lexicon. It covers the
// common genre vocabulary of streaming catalogs, including the
// multi-word subgenres that must win over their single-word parents.
func DefaultLexicon() *Lexicon {
	return NewLexicon(
		"acoustic", "alternative", "alternative rock", "ambient", "americana",
		"bluegrass", "blues", "classic rock", "classical", "country",
		"dance", "death metal", "disco", "dream pop", "drum and bass",
		"dubstep", "edm", "electronic", "emo", "folk", "folk rock", "funk",
		"garage rock", "gospel", "grunge", "hard rock", "heavy metal",
		"hip hop", "house", "indie", "indie folk", "indie pop", "indie rock",
		"jazz", "k-pop", "latin", "lo-fi", "metal", "motown", "new wave",
		"pop", "pop punk", "pop rock", "post punk", "post rock",
		"progressive rock", "psychedelic rock", "punk", "punk rock",
		"r&b", "rap", "reggae", "rock", "salsa", "shoegaze",
		"singer-songwriter", "ska", "soul", "surf rock", "synth pop",
		"techno", "trap", "trip hop",
	)
}
