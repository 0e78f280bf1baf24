package fetch

import "errors"

var (
	// ErrMissingCredentials is returned when a client is constructed without credentials
	ErrMissingCredentials = errors.New("API credentials are required")

	// ErrSongNotFound is returned when the lyrics provider has no results for a query
	ErrSongNotFound = errors.New("song not found")

	// ErrResultMismatch is returned when the provider's best hit fails the
	// fuzzy title or artist verification
	ErrResultMismatch = errors.New("search result does not match the requested song")

	// ErrNoLyrics is returned when a song page yields no lyric text
	ErrNoLyrics = errors.New("no lyrics found on song page")

	// ErrSongRepositoryRequired is returned when the enricher is constructed without storage
	ErrSongRepositoryRequired = errors.New("song repository is required")

	// ErrSectionRepositoryRequired is returned when the enricher is constructed without section storage
	ErrSectionRepositoryRequired = errors.New("section repository is required")

	// ErrArtistLookupRequired is returned when the enricher is constructed without a lookup client
	ErrArtistLookupRequired = errors.New("artist lookup client is required")
)
