package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "These lyrics are a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSongIDFromSource(t *testing.T) {
	id1 := SongIDFromSource("12345")
	id2 := SongIDFromSource("12345")
	if id1 != id2 {
		t.Errorf("SongIDFromSource() not deterministic: %d vs %d", id1, id2)
	}

	other := SongIDFromSource("54321")
	if id1 == other {
		t.Errorf("SongIDFromSource() collided for distinct source ids")
	}

	// A source id must not collide with plain content hashing of the same text.
	if id1 == IDFromContent("12345") {
		t.Errorf("SongIDFromSource() collided with IDFromContent for same text")
	}
}

func TestSectionIDFor(t *testing.T) {
	song := SongIDFromSource("12345")

	first := SectionIDFor(song, 0)
	second := SectionIDFor(song, 1)
	if first == second {
		t.Errorf("SectionIDFor() collided for distinct positions")
	}

	if first != SectionIDFor(song, 0) {
		t.Errorf("SectionIDFor() not deterministic")
	}

	otherSong := SongIDFromSource("54321")
	if first == SectionIDFor(otherSong, 0) {
		t.Errorf("SectionIDFor() collided across songs")
	}
}
