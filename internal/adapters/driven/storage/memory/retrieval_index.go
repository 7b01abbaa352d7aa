package memory

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure RetrievalIndex implements the interface.
var _ driven.RetrievalIndex = (*RetrievalIndex)(nil)

// RetrievalIndex ranks fragments against a query by term-frequency cosine
// similarity. Term vectors are computed once, at index time.
type RetrievalIndex struct {
	mu      sync.RWMutex
	entries []indexEntry
}

type indexEntry struct {
	fragment domain.Fragment
	terms    map[string]int
	norm     float64
}

// NewRetrievalIndex creates an empty index.
func NewRetrievalIndex() *RetrievalIndex {
	return &RetrievalIndex{}
}

// Index appends fragments in order. Fragments are not deduplicated.
func (idx *RetrievalIndex) Index(fragments []domain.Fragment) {
	entries := newEntries(fragments)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = append(idx.entries, entries...)
}

// Replace swaps in fragments as the whole index. Term vectors are built
// before the lock is taken.
func (idx *RetrievalIndex) Replace(fragments []domain.Fragment) {
	entries := newEntries(fragments)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = entries
}

func newEntries(fragments []domain.Fragment) []indexEntry {
	entries := make([]indexEntry, 0, len(fragments))
	for _, f := range fragments {
		terms := TermCounts(f.Text)
		entries = append(entries, indexEntry{
			fragment: f,
			terms:    terms,
			norm:     norm(terms),
		})
	}
	return entries
}

// Search returns at most topK fragments with a positive score, best first.
// Equal scores keep indexing order.
func (idx *RetrievalIndex) Search(query string, topK int) []domain.RankedFragment {
	if topK <= 0 {
		return []domain.RankedFragment{}
	}
	q := TermCounts(query)
	if len(q) == 0 {
		return []domain.RankedFragment{}
	}
	qNorm := norm(q)

	idx.mu.RLock()
	ranked := make([]domain.RankedFragment, 0)
	for _, e := range idx.entries {
		if e.norm == 0 {
			continue
		}
		score := dot(q, e.terms) / (qNorm * e.norm)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, domain.RankedFragment{
			Fragment: e.fragment,
			Score:    math.Min(score, 1),
		})
	}
	idx.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Len returns the number of indexed fragments.
func (idx *RetrievalIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Reset discards every fragment.
func (idx *RetrievalIndex) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = nil
}

// TermCounts tokenizes text by lower-cased whitespace splitting and counts
// each term. No stemming or stop-word removal is applied.
func TermCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range strings.Fields(strings.ToLower(text)) {
		counts[term]++
	}
	return counts
}

// cosine returns the cosine similarity of two term-count vectors.
// The dot product runs over shared terms; both norms use the full vectors.
func cosine(a, b map[string]int) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Min(dot(a, b)/(na*nb), 1)
}

func dot(a, b map[string]int) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, ca := range a {
		if cb, ok := b[term]; ok {
			sum += float64(ca * cb)
		}
	}
	return sum
}

func norm(v map[string]int) float64 {
	var sum float64
	for _, c := range v {
		sum += float64(c * c)
	}
	return math.Sqrt(sum)
}
