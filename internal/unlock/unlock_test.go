package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/talk-companion/internal/model"
)

func scenarioCatalog() model.Catalog {
	return model.Catalog{
		{Code: "A", Slides: []int{1}, Message: "one"},
		{Code: "AB", Slides: []int{2}, Message: "two"},
		{Code: "ABC", Slides: []int{3}, Message: "three"},
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "ABC", 3},
		{"ABC", "", 3},
		{"GAIA", "GAIA", 0},
		{"GAIA", "GAIAA", 1},
		{"GAIA", "GIA", 1},
		{"GAIA", "GXIA", 1},
		{"KITTEN", "SITTING", 3},
		{"WELCOME", "WELCOEM", 2},
		{"ÀB", "AB", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, Distance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "GAIA", Normalize("  gaia\t"))
	assert.Equal(t, "STRASSE", Normalize("straße"))
	assert.Equal(t, "", Normalize(" \n "))
}

func TestResolveScenario(t *testing.T) {
	c := scenarioCatalog()

	e, i, r := Resolve("A", c)
	assert.Equal(t, Exact, r)
	assert.Equal(t, 0, i)
	assert.Equal(t, []int{1}, UnlockedSlides(i, c))
	assert.Equal(t, "one", e.Message)

	// one edit from both A and AB: first in catalog order wins
	_, i, r = Resolve("AX", c)
	assert.Equal(t, Fuzzy, r)
	assert.Equal(t, 0, i)
	assert.Equal(t, []int{1}, UnlockedSlides(i, c))

	// one edit from both AB and ABC: AB comes first
	e, i, r = Resolve("abd", c)
	assert.Equal(t, Fuzzy, r)
	assert.Equal(t, "AB", e.Code)
	assert.Equal(t, 1, i)
	assert.Equal(t, []int{1, 2}, UnlockedSlides(i, c))

	e, i, r = Resolve("XBC", c)
	assert.Equal(t, Fuzzy, r)
	assert.Equal(t, "ABC", e.Code)
	assert.Equal(t, 2, i)
	assert.Equal(t, []int{1, 2, 3}, UnlockedSlides(i, c))

	e, i, r = Resolve("abcd", c)
	assert.Equal(t, Fuzzy, r)
	assert.Equal(t, "ABC", e.Code)
	assert.Equal(t, []int{1, 2, 3}, UnlockedSlides(i, c))

	_, i, r = Resolve("XYZ", c)
	assert.Equal(t, Wrong, r)
	assert.Equal(t, -1, i)
}

func TestResolveExactBeatsEarlierFuzzy(t *testing.T) {
	c := scenarioCatalog()
	// AB is one edit from A (earlier) but matches AB exactly.
	_, i, r := Resolve(" ab ", c)
	assert.Equal(t, Exact, r)
	assert.Equal(t, 1, i)
}

func TestResolveCatalogCaseInsensitive(t *testing.T) {
	c := model.Catalog{{Code: "Gaia", Slides: []int{4}}}
	_, i, r := Resolve("GAIA", c)
	assert.Equal(t, Exact, r)
	assert.Equal(t, 0, i)
}

func TestResolveBlank(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, i, r := Resolve(in, scenarioCatalog())
		assert.Equal(t, Blank, r)
		assert.Equal(t, -1, i)
		assert.False(t, r.Matched())
	}
}

func TestResolveRejectsDistanceTwo(t *testing.T) {
	c := model.Catalog{{Code: "GALAXY", Slides: []int{7}}}
	_, _, r := Resolve("GALAXYYY", c)
	assert.Equal(t, Wrong, r)
}

func TestUnlockedSlidesMonotonic(t *testing.T) {
	c := model.Catalog{
		{Code: "ONE", Slides: []int{3, 1}},
		{Code: "TWO", Slides: []int{2, 3}},
		{Code: "THREE", Slides: []int{9}},
	}
	prev := map[int]bool{}
	for i := range c {
		got := UnlockedSlides(i, c)
		for id := range prev {
			assert.Contains(t, got, id)
		}
		prev = map[int]bool{}
		for _, id := range got {
			prev[id] = true
		}
	}
	assert.Equal(t, []int{1, 2, 3}, UnlockedSlides(1, c))
	assert.Equal(t, []int{1, 2, 3, 9}, UnlockedSlides(2, c))
}

func TestUnlockedSlidesIdempotent(t *testing.T) {
	c := scenarioCatalog()
	_, i1, _ := Resolve("ABC", c)
	_, i2, _ := Resolve("ABC", c)
	assert.Equal(t, UnlockedSlides(i1, c), UnlockedSlides(i2, c))
}

func TestUnlockedSlidesOutOfRange(t *testing.T) {
	assert.Empty(t, UnlockedSlides(-1, scenarioCatalog()))
	assert.Empty(t, UnlockedSlides(3, scenarioCatalog()))
}

func TestSorted(t *testing.T) {
	in := []int{5, 1, 5, 3, 1}
	assert.Equal(t, []int{1, 3, 5}, Sorted(in))
	assert.Equal(t, []int{5, 1, 5, 3, 1}, in)
	assert.Empty(t, Sorted(nil))
}
