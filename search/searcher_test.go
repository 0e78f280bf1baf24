package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/lyrica/ai/mock"
	"github.com/poiesic/lyrica/core"
	"github.com/poiesic/lyrica/storage"
	"github.com/poiesic/lyrica/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedQueryEmbedder returns a mock provider whose embedder maps every
// query to the given vector, so tests control similarities exactly.
func fixedQueryEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

type fixture struct {
	songs     storage.SongRepository
	sections  storage.SectionRepository
	manifests storage.ManifestRepository
	backend   *badger.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	songs, sections, manifests, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sections.Close()
		songs.Close()
		backend.Close()
	})
	return &fixture{songs: songs, sections: sections, manifests: manifests, backend: backend}
}

func (f *fixture) addSong(t *testing.T, sourceId, title string, genres []string, vector []float32) *core.Song {
	t.Helper()
	song := &core.Song{
		Id:         core.SongIDFromSource(sourceId),
		SourceId:   sourceId,
		Title:      title,
		Artist:     "Artist of " + title,
		Genres:     genres,
		FullLyrics: "lyrics of " + title,
		Vector:     core.NormalizeVector(vector),
	}
	_, err := f.songs.AddSongs(context.Background(), song)
	require.NoError(t, err)
	return song
}

func (f *fixture) addSection(t *testing.T, song *core.Song, position int, sectionType, text string, vector []float32) *core.Section {
	t.Helper()
	section := &core.Section{
		Id:       core.SectionIDFor(song.Id, position),
		SongId:   song.Id,
		Title:    song.Title,
		Artist:   song.Artist,
		Genres:   song.Genres,
		Type:     sectionType,
		Number:   position + 1,
		Position: position,
		Text:     text,
		Vector:   core.NormalizeVector(vector),
	}
	_, err := f.sections.AddSections(context.Background(), section)
	require.NoError(t, err)
	return section
}

func TestNewSearcher(t *testing.T) {
	f := newFixture(t)
	provider := mock.NewMockProvider()
	ctx := context.Background()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil song repository", func(t *testing.T) {
		_, err := NewSearcher(ctx, nil, f.sections, f.manifests, provider)
		assert.Equal(t, ErrSongRepositoryRequired, err)
	})

	t.Run("nil section repository", func(t *testing.T) {
		_, err := NewSearcher(ctx, f.songs, nil, f.manifests, provider)
		assert.Equal(t, ErrSectionRepositoryRequired, err)
	})

	t.Run("nil manifest repository", func(t *testing.T) {
		_, err := NewSearcher(ctx, f.songs, f.sections, nil, provider)
		assert.Equal(t, ErrManifestRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("negative boost rejected", func(t *testing.T) {
		_, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithGenreBoost(-1))
		assert.Error(t, err)
	})
}

func TestNewSearcher_ModelMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.manifests.SaveManifest(ctx, &core.IndexManifest{
		EmbeddingModel: "all-mpnet-base-v2",
		Dimensions:     768,
	})
	require.NoError(t, err)

	// Mock embedder reports "mock-embedder", not the model that built
	// the index.
	_, err = NewSearcher(ctx, f.songs, f.sections, f.manifests, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrEmbeddingModelMismatch)

	// Matching model is accepted.
	embedder := mock.NewMockEmbedder()
	embedder.ModelName = "all-mpnet-base-v2"
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	assert.NotNil(t, searcher)
}

func TestSearch_EmptyIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "songs about heartbreak", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = searcher.Search(ctx, "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_DeduplicatesBySong(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	song := f.addSong(t, "s1", "Echoes", nil, []float32{1, 0})
	f.addSection(t, song, 0, "verse", "a weaker verse", []float32{0.6, 0.8})
	f.addSection(t, song, 1, "chorus", "the strong chorus", []float32{0.9, 0.435889894})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "echo chamber", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, song.Id, result.SongId)
	require.NotNil(t, result.BestSection)
	assert.Equal(t, "chorus", result.BestSection.Type)
	assert.Equal(t, "the strong chorus", result.BestSection.Text)
	assert.InDelta(t, 0.9, result.SectionScore, 1e-3)
}

func TestSearch_FusionWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Song-only match: cosine similarity 0.8 to the query.
	songOnly := f.addSong(t, "s1", "Song Only", nil, []float32{0.8, 0.6})

	// Section-only match: parent song vector points away from the query.
	sectionParent := f.addSong(t, "s2", "Section Parent", nil, []float32{-1, 0})
	f.addSection(t, sectionParent, 0, "verse", "matching verse", []float32{0.6, 0.8})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byId := make(map[core.ID]*core.ScoredResult)
	for _, r := range results {
		byId[r.SongId] = r
	}

	// Song-only entry: combined = songWeight * similarity.
	r1 := byId[songOnly.Id]
	require.NotNil(t, r1)
	assert.InDelta(t, 0.8, r1.SongScore, 1e-3)
	assert.InDelta(t, DefaultSongWeight*0.8, r1.Combined, 1e-3)
	assert.Nil(t, r1.BestSection)

	// Section-only entry still surfaces with section weight applied and
	// metadata carried from the section record.
	r2 := byId[sectionParent.Id]
	require.NotNil(t, r2)
	assert.InDelta(t, 0.6, r2.SectionScore, 1e-3)
	assert.Equal(t, "Section Parent", r2.Title)
	require.NotNil(t, r2.BestSection)
}

func TestSearch_CombinedScoreSumsBothComponents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	song := f.addSong(t, "s1", "Both Signals", nil, []float32{0.8, 0.6})
	f.addSection(t, song, 0, "chorus", "the chorus", []float32{0.6, 0.8})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	expected := DefaultSongWeight*0.8 + DefaultSectionWeight*0.6
	assert.InDelta(t, expected, results[0].Combined, 1e-3)
}

func TestSearch_GenreBoost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The closer song has no matching genre; the slightly farther one
	// is rock. With the default 1.5x boost the rock song must win.
	f.addSong(t, "s1", "Closer But Plain", []string{"jazz"}, []float32{0.99, 0.14106736})
	boosted := f.addSong(t, "s2", "Rock Anthem", []string{"rock"}, []float32{0.95, 0.31224990})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "rock songs about night driving", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, boosted.Id, results[0].SongId)
	assert.True(t, results[0].GenreMatched)
	assert.False(t, results[1].GenreMatched)
	assert.InDelta(t, DefaultSongWeight*0.95*DefaultGenreBoost, results[0].Combined, 1e-3)
}

func TestSearch_GenreBoostDisabledAtOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSong(t, "s1", "Rock Song", []string{"rock"}, []float32{0.9, 0.435889894})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithGenreBoost(1.0))
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "rock ballad", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Matched flag is still reported; the score is untouched.
	assert.True(t, results[0].GenreMatched)
	assert.InDelta(t, DefaultSongWeight*0.9, results[0].Combined, 1e-3)
}

func TestSearch_GenreBoostZeroDisablesReranking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The rock song is the closer match; with the boost disabled its
	// score must be the plain fused value, not zeroed out by a 0x
	// multiplier.
	rock := f.addSong(t, "s1", "Rock in the Rain", []string{"rock"}, []float32{1, 0})
	jazz := f.addSong(t, "s2", "Jazz Drizzle", []string{"jazz"}, []float32{0.8, 0.6})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithGenreBoost(0))
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "rock songs about rain", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ordering is identical to unboosted fusion.
	assert.Equal(t, rock.Id, results[0].SongId)
	assert.Equal(t, jazz.Id, results[1].SongId)
	assert.InDelta(t, DefaultSongWeight*1.0, results[0].Combined, 1e-3)
	assert.InDelta(t, DefaultSongWeight*0.8, results[1].Combined, 1e-3)
	assert.False(t, results[0].GenreMatched)
	assert.False(t, results[1].GenreMatched)
}

func TestSearch_SectionWeightMonotonicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// sectionHeavy's section similarity (0.9) dominates its song
	// similarity (0.2); songHeavy matches on full lyrics only (0.9).
	sectionHeavy := f.addSong(t, "s1", "Section Heavy", nil, []float32{0.2, 0.9797958971})
	f.addSection(t, sectionHeavy, 0, "chorus", "the matching chorus", []float32{0.9, 0.435889894})
	songHeavy := f.addSong(t, "s2", "Song Heavy", nil, []float32{0.9, 0.435889894})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))

	rank := func(sectionWeight float32) []core.ID {
		config := DefaultSearchConfig()
		config.SectionWeight = sectionWeight
		searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider, WithConfig(config))
		require.NoError(t, err)

		results, err := searcher.Search(ctx, "anything", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		ids := make([]core.ID, len(results))
		for i, r := range results {
			ids[i] = r.SongId
		}
		return ids
	}

	// At a low section weight the song-only match wins
	// (0.5*0.9=0.45 vs 0.5*0.2+0.3*0.9=0.37).
	assert.Equal(t, []core.ID{songHeavy.Id, sectionHeavy.Id}, rank(0.3))

	// Raising the section weight promotes the section-dominant song
	// (0.5*0.2+0.6*0.9=0.64 vs 0.45); its rank never decreases.
	assert.Equal(t, []core.ID{sectionHeavy.Id, songHeavy.Id}, rank(0.6))
}

func TestSearch_BoostDominatedByRawScoreGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The boost multiplies the fused score, it does not override it: a
	// boosted 0.38 (-> 0.57) still loses to an unboosted 0.575.
	boosted := f.addSong(t, "s1", "Indie Anthem", []string{"indie rock"}, []float32{0.4, 0.9165151390})
	f.addSection(t, boosted, 0, "verse", "rebellion verse", []float32{0.3, 0.9539392014})
	plain := f.addSong(t, "s2", "Metal Grit", []string{"rap metal"}, []float32{0.55, 0.8351646544})
	f.addSection(t, plain, 0, "verse", "grit verse", []float32{0.5, 0.8660254038})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "indie rock rebellion", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, plain.Id, results[0].SongId)
	assert.False(t, results[0].GenreMatched)
	assert.InDelta(t, 0.5*0.55+0.6*0.50, results[0].Combined, 1e-3)

	assert.Equal(t, boosted.Id, results[1].SongId)
	assert.True(t, results[1].GenreMatched)
	assert.InDelta(t, (0.5*0.40+0.6*0.30)*DefaultGenreBoost, results[1].Combined, 1e-3)
}

func TestSearch_GenreBoostMatchesSubgenre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Catalog genre "indie rock" contains the query term "rock".
	f.addSong(t, "s1", "Indie Track", []string{"indie rock"}, []float32{0.9, 0.435889894})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "rock music", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].GenreMatched)
}

func TestSearch_TieBreakBySongId(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Identical vectors, identical scores. Order falls back to song id.
	first := f.addSong(t, "s1", "Twin A", nil, []float32{1, 0})
	second := f.addSong(t, "s2", "Twin B", nil, []float32{1, 0})

	lower, higher := first, second
	if second.Id < first.Id {
		lower, higher = second, first
	}

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "twins", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, lower.Id, results[0].SongId)
	assert.Equal(t, higher.Id, results[1].SongId)
}

func TestSearch_MaxHitsTruncation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSong(t, "s1", "One", nil, []float32{1, 0})
	f.addSong(t, "s2", "Two", nil, []float32{0.9, 0.435889894})
	f.addSong(t, "s3", "Three", nil, []float32{0.8, 0.6})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "anything", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "One", results[0].Title)
}

func TestSearch_DropsMalformedSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A section with no text is unusable as evidence and must not
	// produce a result.
	songId := core.SongIDFromSource("orphan")
	broken := &core.Section{
		Id:     core.SectionIDFor(songId, 0),
		SongId: songId,
		Type:   "verse",
		Number: 1,
		Vector: core.NormalizeVector([]float32{1, 0}),
	}
	_, err := f.sections.AddSections(ctx, broken)
	require.NoError(t, err)

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_QueryOfOnlyGenreTermsStillRetrieves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addSong(t, "s1", "Shoegaze Wall", []string{"shoegaze"}, []float32{1, 0})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, "shoegaze", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].GenreMatched)
}

type recordingMonitor struct {
	started     bool
	genreTerms  []string
	residual    string
	songCount   int
	sectionCnt  int
	boosts      []core.ID
	finishCount int
}

func (m *recordingMonitor) Start(_ string) { m.started = true }
func (m *recordingMonitor) AfterQueryParse(terms []string, residual string) {
	m.genreTerms = terms
	m.residual = residual
}
func (m *recordingMonitor) AfterSongSearch(matches []*core.SongMatch)       { m.songCount = len(matches) }
func (m *recordingMonitor) AfterSectionSearch(matches []*core.SectionMatch) { m.sectionCnt = len(matches) }
func (m *recordingMonitor) FusedHit(_ *core.ScoredResult)                   {}
func (m *recordingMonitor) BoostApplied(songId core.ID, _ float32)          { m.boosts = append(m.boosts, songId) }
func (m *recordingMonitor) Finish(results []*core.ScoredResult)             { m.finishCount = len(results) }

func TestSearchWithMonitor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rock := f.addSong(t, "s1", "Monitored", []string{"rock"}, []float32{1, 0})

	provider := mock.NewMockProviderWithEmbedder(fixedQueryEmbedder([]float32{1, 0}))
	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(ctx, "rock songs about rain", 10, monitor)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, monitor.started)
	assert.Equal(t, []string{"rock"}, monitor.genreTerms)
	assert.Equal(t, "songs about rain", monitor.residual)
	assert.Equal(t, 1, monitor.songCount)
	assert.Equal(t, []core.ID{rock.Id}, monitor.boosts)
	assert.Equal(t, 1, monitor.finishCount)
}

func TestParseQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	searcher, err := NewSearcher(ctx, f.songs, f.sections, f.manifests, mock.NewMockProvider())
	require.NoError(t, err)

	query := searcher.ParseQuery("indie rock songs about rebellion")
	assert.Equal(t, []string{"indie rock"}, query.GenreTerms)
	assert.Equal(t, "songs about rebellion", query.ResidualText)
	assert.InDelta(t, DefaultGenreBoost, query.GenreBoost, 1e-6)
}
