package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/lyrica/ai"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
)

// Searcher provides hybrid semantic search over a song corpus. Each
// query runs against two collections at once, whole songs and lyric
// sections, and the two result sets are fused into one ranked list of
// songs.
type Searcher struct {
	songRepository     storage.SongRepository
	sectionRepository  storage.SectionRepository
	manifestRepository storage.ManifestRepository
	embedder           ai.Embedder
	lexicon            *Lexicon
	config             Config
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the fusion configuration.
func WithConfig(config Config) Option {
	return func(s *Searcher) error {
		if config.SongCandidates <= 0 || config.SectionCandidates <= 0 {
			return fmt.Errorf("candidate limits must be positive")
		}
		s.config = config
		return nil
	}
}

// WithLexicon replaces the genre lexicon used for query parsing.
func WithLexicon(lexicon *Lexicon) Option {
	return func(s *Searcher) error {
		if lexicon == nil {
			return fmt.Errorf("lexicon must not be nil")
		}
		s.lexicon = lexicon
		return nil
	}
}

// WithGenreBoost overrides the genre boost multiplier. A boost of 1
// leaves matched results unchanged; 0 disables the re-rank stage.
func WithGenreBoost(boost float32) Option {
	return func(s *Searcher) error {
		if boost < 0 {
			return fmt.Errorf("genre boost must not be negative")
		}
		s.config.GenreBoost = boost
		return nil
	}
}

// NewSearcher creates a new searcher. The index manifest is checked
// against the provider's embedding model: an index built with one model
// cannot be searched with another, and the mismatch is surfaced here
// rather than as silently broken rankings.
func NewSearcher(
	ctx context.Context,
	songRepository storage.SongRepository,
	sectionRepository storage.SectionRepository,
	manifestRepository storage.ManifestRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if songRepository == nil {
		return nil, ErrSongRepositoryRequired
	}
	if sectionRepository == nil {
		return nil, ErrSectionRepositoryRequired
	}
	if manifestRepository == nil {
		return nil, ErrManifestRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		songRepository:     songRepository,
		sectionRepository:  sectionRepository,
		manifestRepository: manifestRepository,
		embedder:           provider.Embedder(),
		lexicon:            DefaultLexicon(),
		config:             DefaultSearchConfig(),
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	manifest, err := manifestRepository.LoadManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading index manifest: %w", err)
	}
	if manifest != nil && manifest.EmbeddingModel != s.embedder.Model() {
		return nil, fmt.Errorf("%w: index built with %q, embedder is %q",
			ErrEmbeddingModelMismatch, manifest.EmbeddingModel, s.embedder.Model())
	}

	return s, nil
}

// ParseQuery splits a raw query into genre terms and residual text.
// Genre terms steer the boost stage; the residual text is what gets
// embedded. A query that is nothing but genre terms embeds the raw
// text instead, so "indie rock" still retrieves something.
func (s *Searcher) ParseQuery(raw string) core.Query {
	terms, residual := s.lexicon.Extract(raw)
	return core.Query{
		RawText:      raw,
		GenreTerms:   terms,
		ResidualText: residual,
		GenreBoost:   s.config.GenreBoost,
	}
}

// Search finds songs relevant to the query. Returns up to maxHits
// results ranked by fused score.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int) ([]*core.ScoredResult, error) {
	return s.SearchWithMonitor(ctx, query, maxHits, nil)
}

// SearchWithMonitor runs a search with per-stage monitoring callbacks.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.ScoredResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	// 1. Split genre terms from the text to embed.
	parsed := s.ParseQuery(query)
	monitor.AfterQueryParse(parsed.GenreTerms, parsed.ResidualText)

	embedText := parsed.ResidualText
	if embedText == "" {
		embedText = parsed.RawText
	}

	embedding, err := s.embedder.EmbedText(ctx, embedText)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	embedding = core.NormalizeVector(embedding)

	// 2. Query both collections concurrently.
	var (
		wg             sync.WaitGroup
		songMatches    []*core.SongMatch
		sectionMatches []*core.SectionMatch
		songErr        error
		sectionErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		songMatches, songErr = s.songRepository.FindSimilar(ctx, embedding, s.config.SongCandidates)
	}()
	go func() {
		defer wg.Done()
		sectionMatches, sectionErr = s.sectionRepository.FindSimilar(ctx, embedding, s.config.SectionCandidates)
	}()
	wg.Wait()

	if songErr != nil {
		s.logger.Error("error querying songs", "err", songErr)
		return nil, songErr
	}
	if sectionErr != nil {
		s.logger.Error("error querying sections", "err", sectionErr)
		return nil, sectionErr
	}
	monitor.AfterSongSearch(songMatches)
	monitor.AfterSectionSearch(sectionMatches)

	// 3. Fuse both candidate sets into one entry per song.
	results := s.fuse(parsed, songMatches, sectionMatches, monitor)

	// 4. Rank: fused score first, then song-level similarity, then song
	// id for a stable order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Combined != results[j].Combined {
			return results[i].Combined > results[j].Combined
		}
		if results[i].SongScore != results[j].SongScore {
			return results[i].SongScore > results[j].SongScore
		}
		return results[i].SongId < results[j].SongId
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}

// fuse merges song and section candidates into one scored entry per
// song. Each song appears at most once regardless of how many of its
// sections matched; only the best section counts.
func (s *Searcher) fuse(query core.Query, songMatches []*core.SongMatch, sectionMatches []*core.SectionMatch, monitor SearchMonitor) []*core.ScoredResult {
	entries := make(map[core.ID]*core.ScoredResult)

	for _, match := range songMatches {
		if match.Song == nil || match.Song.Id == 0 {
			s.logger.Warn("dropping malformed song match")
			continue
		}
		song := match.Song
		entries[song.Id] = &core.ScoredResult{
			SongId:    song.Id,
			Title:     song.Title,
			Artist:    song.Artist,
			Genres:    song.Genres,
			SongScore: 1 - match.Distance,
		}
	}

	for _, match := range sectionMatches {
		if match.Section == nil || match.Section.SongId == 0 || match.Section.Text == "" {
			s.logger.Warn("dropping malformed section match")
			continue
		}
		section := match.Section
		similarity := 1 - match.Distance

		entry, ok := entries[section.SongId]
		if !ok {
			entry = &core.ScoredResult{
				SongId: section.SongId,
				Title:  section.Title,
				Artist: section.Artist,
				Genres: section.Genres,
			}
			entries[section.SongId] = entry
		}
		if entry.BestSection == nil || similarity > entry.SectionScore {
			entry.SectionScore = similarity
			entry.BestSection = &core.SectionHit{
				Type:   section.Type,
				Number: section.Number,
				Text:   section.Text,
			}
		}
	}

	results := make([]*core.ScoredResult, 0, len(entries))
	for _, entry := range entries {
		entry.Combined = s.config.SongWeight*entry.SongScore + s.config.SectionWeight*entry.SectionScore

		// A zero boost disables re-ranking entirely; fused scores pass
		// through unchanged.
		if query.GenreBoost > 0 && matchesGenre(query.GenreTerms, entry.Genres) {
			entry.GenreMatched = true
			entry.Combined *= query.GenreBoost
			monitor.BoostApplied(entry.SongId, query.GenreBoost)
		}

		monitor.FusedHit(entry)
		results = append(results, entry)
	}
	return results
}

// matchesGenre reports whether any query genre term appears in the
// song's genre list. Comparison is case-insensitive; a term matches a
// catalog genre that contains it, so "rock" matches "indie rock".
func matchesGenre(terms []string, genres []string) bool {
	if len(terms) == 0 || len(genres) == 0 {
		return false
	}
	for _, term := range terms {
		term = strings.ToLower(term)
		for _, genre := range genres {
			genre = strings.ToLower(genre)
			if genre == term || strings.Contains(genre, term) {
				return true
			}
		}
	}
	return false
}
