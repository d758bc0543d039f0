// Package unlock matches submitted codes against the catalog and computes
// the cumulative set of unlocked slides.
package unlock

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/talk-companion/internal/model"
)

// Result classifies the outcome of resolving a submission.
type Result int

const (
	// Blank means the input was empty after trimming and must be ignored.
	Blank Result = iota
	// Exact means the input equals a catalog code.
	Exact
	// Fuzzy means the input is one edit away from a catalog code.
	Fuzzy
	// Wrong means nothing in the catalog matched.
	Wrong
)

func (r Result) String() string {
	switch r {
	case Blank:
		return "blank"
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	case Wrong:
		return "wrong"
	}
	return "unknown"
}

// Matched reports whether r carries a catalog entry.
func (r Result) Matched() bool {
	return r == Exact || r == Fuzzy
}

// Normalize returns the canonical comparison form of a code.
func Normalize(s string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// Resolve finds the catalog entry matching input. An exact match always
// wins; otherwise the first entry in catalog order at edit distance 1 is
// taken. The returned index is -1 unless the result is Exact or Fuzzy.
func Resolve(input string, c model.Catalog) (model.CodeEntry, int, Result) {
	code := Normalize(input)
	if code == "" {
		return model.CodeEntry{}, -1, Blank
	}
	for i, e := range c {
		if Normalize(e.Code) == code {
			return e, i, Exact
		}
	}
	for i, e := range c {
		if Distance(code, Normalize(e.Code)) == 1 {
			return e, i, Fuzzy
		}
	}
	return model.CodeEntry{}, -1, Wrong
}

// UnlockedSlides returns the union of slides for entries 0..index,
// ascending and without duplicates. The result replaces any earlier
// unlocked set. An out of range index yields an empty set.
func UnlockedSlides(index int, c model.Catalog) []int {
	if index < 0 || index >= len(c) {
		return []int{}
	}
	var ids []int
	for _, e := range c[:index+1] {
		ids = append(ids, e.Slides...)
	}
	return Sorted(ids)
}

// Sorted returns ids ascending with duplicates removed. The input is not modified.
func Sorted(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Distance is the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
