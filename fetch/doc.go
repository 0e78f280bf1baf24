/*
Package fetch acquires catalog and lyric data from external providers.

Three collaborators cover the acquisition path:

  - CatalogClient walks a Spotify-compatible API: playlists yield
    candidate tracks, artist search yields genre and popularity
    metadata. Authentication uses the oauth2 client-credentials flow.
  - LyricsClient resolves a (title, artist) pair against a
    Genius-compatible search API and scrapes the lyric text from the
    song page. Hits are verified with fuzzy title matching before the
    page is fetched, so covers and remasters of the wrong song are
    rejected rather than ingested.
  - Enricher backfills genres and popularity on already-stored songs
    and their section records, caching artist lookups within a run.

Failures are per song: a track whose lyrics cannot be found or
verified is skipped by the caller, not fatal to the batch.
*/
package fetch
