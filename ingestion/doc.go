// Package ingestion builds the search index from raw song documents.
//
// The Pipeline parses each document's lyric sheet into sections, embeds
// the full lyrics and every section in a single batch, and writes the
// results to the song and section collections. Documents whose song is
// already indexed are skipped, so an ingestion run over a full catalog
// is idempotent. The index manifest records the embedding model after
// every successful run.
//
// Songs are processed concurrently on a worker pool; per-document
// failures are logged and counted rather than aborting the run.
package ingestion
