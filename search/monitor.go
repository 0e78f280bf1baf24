package search

import "github.com/poiesic/lyrica/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryParse(genreTerms []string, residual string)
	AfterSongSearch(matches []*core.SongMatch)
	AfterSectionSearch(matches []*core.SectionMatch)
	FusedHit(result *core.ScoredResult)
	BoostApplied(songId core.ID, boost float32)
	Finish(results []*core.ScoredResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterQueryParse(_ []string, _ string)      {}
func (n *noopMonitor) AfterSongSearch(_ []*core.SongMatch)       {}
func (n *noopMonitor) AfterSectionSearch(_ []*core.SectionMatch) {}
func (n *noopMonitor) FusedHit(_ *core.ScoredResult)             {}
func (n *noopMonitor) BoostApplied(_ core.ID, _ float32)         {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult)             {}
