package badger

import (
	"fmt"

	"github.com/poiesic/lyrica/core"
)

// Key prefixes for different data types
const (
	songRecordPrefix    = "sonrec"
	sectionRecordPrefix = "secrec"
	sectionSongPrefix   = "secsong"
	manifestKey         = "manifest"
)

// makeSongKey generates a key for a song record by ID.
func makeSongKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", songRecordPrefix, id))
}

// makeSectionKey generates a key for a section record by ID.
func makeSectionKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sectionRecordPrefix, id))
}

// makeSectionSongKey generates a composite key for the song->sections index.
// The zero-padded position keeps prefix iteration in lyric order.
func makeSectionSongKey(songId core.ID, position int) []byte {
	return []byte(fmt.Sprintf("%s:%020d:%06d", sectionSongPrefix, songId, position))
}

// makeSectionSongScanPrefix generates the iteration prefix for all sections
// of one song.
func makeSectionSongScanPrefix(songId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%020d:", sectionSongPrefix, songId))
}

// makeManifestKey generates the key for the index manifest singleton.
func makeManifestKey() []byte {
	return []byte(manifestKey)
}
