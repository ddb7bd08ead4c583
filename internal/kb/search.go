// Package kb ranks and filters knowledge-base articles. The corpus is small
// and changes rarely, so search is a linear scan over a store snapshot; the
// Searcher interface keeps callers unaware of that in case an indexed
// implementation replaces it.
package kb

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// Scoring weights and cut-off for Search.
const (
	haystackOverlapWeight = 0.55
	editSimilarityWeight  = 0.45
	titleOverlapWeight    = 0.10
	scoreThreshold        = 0.15

	defaultSearchLimit    = 5
	defaultMaterialsLimit = 30
)

// Marker tags that make an article part of the training/KB section.
var markerTags = map[string]struct{}{"training": {}, "kb": {}}

// Searcher is the search capability exposed to conversation handlers.
type Searcher interface {
	Search(query string, limit int) []domain.Article
	MaterialsForRole(role string, limit int) []domain.Article
}

// Catalog supplies the article corpus, newest snapshot per call.
type Catalog interface {
	Articles() []domain.Article
}

// Index is the linear-scan Searcher implementation.
type Index struct {
	catalog Catalog
	dmp     *diffmatchpatch.DiffMatchPatch
}

// NewIndex builds an Index over the given catalog.
func NewIndex(catalog Catalog) *Index {
	return &Index{catalog: catalog, dmp: diffmatchpatch.New()}
}

// Search scores every article against query and returns the qualifying ones,
// best first. Ties keep insertion order. Empty queries and queries with no
// match above the threshold return an empty slice, never an error.
func (ix *Index) Search(query string, limit int) []domain.Article {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	q := strings.ToLower(query)
	qTokens := tokenSet(q)

	type scored struct {
		score   float64
		article domain.Article
	}
	var hits []scored
	for _, a := range ix.catalog.Articles() {
		hay := strings.ToLower(a.Title + "\n" + a.Body + "\n" + a.Tags)
		title := strings.ToLower(a.Title)
		hayTokens := tokens(hay)

		score := haystackOverlapWeight*tokenOverlap(qTokens, setOf(hayTokens)) +
			editSimilarityWeight*ix.editSimilarity(q, hay, hayTokens) +
			titleOverlapWeight*tokenOverlap(qTokens, tokenSet(title))
		if score > scoreThreshold {
			hits = append(hits, scored{score: score, article: a})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Article, len(hits))
	for i, h := range hits {
		out[i] = h.article
	}
	return out
}

// MaterialsForRole filters the corpus down to what a role may see:
// untagged articles go to everyone; training/kb-tagged articles go to the
// matching role, or to everyone when the article names no role at all; any
// other tagged article requires an exact role-token match. Results are
// sorted by title.
func (ix *Index) MaterialsForRole(role string, limit int) []domain.Article {
	if limit <= 0 {
		limit = defaultMaterialsLimit
	}
	role = strings.ToLower(strings.TrimSpace(role))

	var out []domain.Article
	for _, a := range ix.catalog.Articles() {
		tags := a.TagList()
		if len(tags) == 0 {
			out = append(out, a)
			continue
		}
		if hasMarkerTag(tags) {
			switch {
			case role != "" && containsToken(tags, role):
				out = append(out, a)
			case !namesAnyRole(tags):
				// Training material without a role token is for everyone.
				out = append(out, a)
			}
			continue
		}
		if role != "" && containsToken(tags, role) {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// editSimilarity returns a [0,1] sequence-similarity between the query and
// the haystack: the best 2*M/T ratio against the whole haystack or any single
// token of it. The per-token comparison keeps short queries ("termin") from
// drowning in a long body; the full-string comparison handles multi-word
// queries.
func (ix *Index) editSimilarity(q, hay string, hayTokens []string) float64 {
	best := ix.ratio(q, hay)
	for _, t := range hayTokens {
		if r := ix.ratio(q, t); r > best {
			best = r
		}
	}
	return best
}

// ratio is the classic 2*M/T similarity over character diffs, where M is the
// number of matched runes and T the total length of both inputs.
func (ix *Index) ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}
	var matched int
	for _, d := range ix.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(matched) / float64(total)
}

var tokenSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// tokens splits s into its lower-cased letter/digit runs, in order. The
// input is expected to be lower-cased already.
func tokens(s string) []string {
	var out []string
	for _, t := range tokenSplit.Split(s, -1) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setOf(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, t := range list {
		set[t] = struct{}{}
	}
	return set
}

// tokenSet is tokens followed by setOf, for one-off inputs.
func tokenSet(s string) map[string]struct{} {
	return setOf(tokens(s))
}

// tokenOverlap is |a ∩ b| / max(|a|, |b|), or 0 when either set is empty.
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(inter) / float64(larger)
}

func hasMarkerTag(tags []string) bool {
	for _, t := range tags {
		if _, ok := markerTags[t]; ok {
			return true
		}
	}
	return false
}

func namesAnyRole(tags []string) bool {
	for _, r := range domain.Roles {
		if containsToken(tags, r) {
			return true
		}
	}
	return false
}

func containsToken(tags []string, token string) bool {
	for _, t := range tags {
		if t == token {
			return true
		}
	}
	return false
}
