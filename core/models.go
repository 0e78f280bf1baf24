package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that repeated ingestion of
// the same song produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SongIDFromSource derives a song ID from its source-catalog identifier.
func SongIDFromSource(sourceId string) ID {
	return IDFromContent("song:" + sourceId)
}

// SectionIDFor derives a section ID from its owning song and zero-based
// position within the song's lyrics.
func SectionIDFor(songId ID, index int) ID {
	return IDFromContent(fmt.Sprintf("section:%d:%d", songId, index))
}

// Song represents one unique track with its cleaned lyrics and metadata.
// Songs are created during ingestion and are read-only during search;
// when upstream lyrics or metadata change the song is re-created wholesale.
type Song struct {
	Id          ID
	SourceId    string // identifier in the source catalog (e.g. lyrics provider ID)
	Title       string
	Artist      string
	Genres      []string // lowercase genre tags, zero or more
	Popularity  int      // optional signal, not required for ranking
	ReleaseDate string
	URL         string
	FullLyrics  string    // complete cleaned lyric text, embedded as the songs-collection vector
	Vector      []float32 // embedding of FullLyrics (populated by the ingestion pipeline)
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Section represents one verse/chorus/bridge occurrence within a song.
// Title, Artist and Genres are denormalized from the owning song so that a
// section hit carries everything needed to rank and display it without a
// second lookup.
type Section struct {
	Id       ID
	SongId   ID // back-reference to the owning song
	Title    string
	Artist   string
	Genres   []string
	Type     string // categorical label: verse, chorus, bridge, ...
	Number   int    // 1-based occurrence counter within its type, for the owning song
	Position int    // zero-based lyric order within the song
	Text     string
	Vector   []float32 // embedding of Text (populated by the ingestion pipeline)
}

// Query captures a single parsed search request. It is ephemeral: built per
// call and never persisted.
type Query struct {
	RawText      string
	GenreTerms   []string // canonical genres detected in RawText
	ResidualText string   // RawText with genre phrases removed, used for embedding
	MaxHits      int
	GenreBoost   float32 // multiplier >= 0; 0 disables genre-aware re-ranking
}

// SongMatch is a songs-collection nearest-neighbor hit.
// Distance is a cosine distance: smaller means more similar.
type SongMatch struct {
	Song     *Song
	Distance float32
}

// SectionMatch is a sections-collection nearest-neighbor hit.
type SectionMatch struct {
	Section  *Section
	Distance float32
}

// SectionHit is the matched-section evidence attached to a search result.
type SectionHit struct {
	Type   string
	Number int
	Text   string
}

// ScoredResult is one ranked song in the search output. The engine emits
// exactly one ScoredResult per distinct song id.
type ScoredResult struct {
	SongId       ID
	Title        string
	Artist       string
	Genres       []string
	Combined     float32 // fused (and possibly genre-boosted) score, higher is better
	SongScore    float32 // normalized full-song similarity
	SectionScore float32 // normalized best-section similarity
	GenreMatched bool
	BestSection  *SectionHit // nil when the song matched on full lyrics only
}

// IndexManifest records how the vector index was built. The embedding model
// identifier is compared against the query-time encoder: a mismatch would
// silently return meaningless distances, so it is treated as a fatal
// configuration error rather than a performance concern.
type IndexManifest struct {
	EmbeddingModel string
	Dimensions     int
	BuiltAt        time.Time
	UpdatedAt      time.Time
}
