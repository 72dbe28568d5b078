package store

import (
	"sort"
	"strings"

	"github.com/codemark/codemark/internal/models"
)

// defaultSearchLimit applies when callers pass a non-positive limit.
const defaultSearchLimit = 20

// SearchResult is one scored search hit.
type SearchResult struct {
	Note        *models.Note `json:"note"`
	Score       float64      `json:"score"`
	PathMatched bool         `json:"path_matched"`
}

// Search tokenizes the query on whitespace and scores every note with an
// additive, OR-style scheme: any term may match. Per token, a content-line
// substring match adds 1 (plus 2 more when the whole line equals the token),
// and file-path and displayPath substring matches add 0.5 each. Notes with
// any match also add backlink count x 0.1 as a tie-breaker. Zero-match notes
// are excluded; results come back by descending score, truncated to limit.
func (s *Store) Search(query string, limit int) []SearchResult {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var results []SearchResult
	for _, n := range s.GetAllNotes() {
		score := 0.0
		contentMatched := false
		pathMatched := false

		for _, line := range n.Content {
			lower := strings.ToLower(line.Text)
			for _, tok := range tokens {
				if !strings.Contains(lower, tok) {
					continue
				}
				score++
				contentMatched = true
				if lower == tok {
					score += 2
				}
			}
		}

		fileLower := strings.ToLower(n.Properties.File)
		pathLower := strings.ToLower(n.DisplayPath)
		for _, tok := range tokens {
			if fileLower != "" && strings.Contains(fileLower, tok) {
				score += 0.5
				pathMatched = true
			}
			if strings.Contains(pathLower, tok) {
				score += 0.5
				pathMatched = true
			}
		}

		if !contentMatched && !pathMatched {
			continue
		}
		score += float64(s.linker.BacklinkCount(n.ID)) * 0.1
		results = append(results, SearchResult{Note: n, Score: score, PathMatched: pathMatched})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
