// Package freq implements word frequency maps: accumulation, the per-file
// normalization pass, key-wise merging, and stop-word exclusion.
package freq

import (
	"maps"
	"sort"
	"strings"
)

// asciiPunctuation is the set of printable ASCII punctuation characters.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Map maps a word to its number of occurrences. Keys are case-sensitive.
type Map map[string]int

// Add counts one occurrence of each word.
func (m Map) Add(words ...string) {
	for _, w := range words {
		m[w]++
	}
}

// AddAll adds every count in other to m.
func (m Map) AddAll(other Map) {
	for w, n := range other {
		m[w] += n
	}
}

// Merge returns the key-wise sum of maps. Inputs are not modified.
func Merge(ms ...Map) Map {
	out := make(Map)
	for _, m := range ms {
		out.AddAll(m)
	}
	return out
}

// Normalize enforces the per-file invariants in place: the empty key and
// keys made only of ASCII punctuation are removed, and every key ending in
// ':' is folded into its colon-stripped form by summing counts.
func (m Map) Normalize() {
	var labels []string
	for w := range m {
		switch {
		case isPunctuation(w):
			delete(m, w)
		case strings.HasSuffix(w, ":"):
			labels = append(labels, w)
		}
	}
	for _, w := range labels {
		n := m[w]
		delete(m, w)
		m[strings.TrimRight(w, ":")] += n
	}
}

// Exclude removes each listed word. Absent words are ignored.
func (m Map) Exclude(words ...string) {
	for _, w := range words {
		delete(m, w)
	}
}

// Clone returns a copy of m.
func (m Map) Clone() Map {
	return maps.Clone(m)
}

// Total returns the sum of all counts.
func (m Map) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Entry is one word and its count.
type Entry struct {
	Word  string
	Count int
}

// Top returns the n most frequent words ordered by count descending, then
// word ascending. n <= 0 returns every entry.
func (m Map) Top(n int) []Entry {
	out := make([]Entry, 0, len(m))
	for w, c := range m {
		out = append(out, Entry{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// isPunctuation reports whether w has no byte outside asciiPunctuation.
// The empty string qualifies.
func isPunctuation(w string) bool {
	for i := 0; i < len(w); i++ {
		if strings.IndexByte(asciiPunctuation, w[i]) < 0 {
			return false
		}
	}
	return true
}
