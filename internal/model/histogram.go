package model

import "sort"

// Histogram maps a category label to its occurrence count.
// Label order carries no meaning; use Labels for a stable rendering order.
type Histogram map[string]int

// NewHistogram returns a histogram seeded with the given labels at zero.
func NewHistogram(labels ...string) Histogram {
	h := make(Histogram, len(labels))
	for _, label := range labels {
		h[label] = 0
	}
	return h
}

// Add increments the count for label by one.
func (h Histogram) Add(label string) {
	h[label]++
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Labels returns the labels sorted alphabetically.
func (h Histogram) Labels() []string {
	labels := make([]string, 0, len(h))
	for label := range h {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// ByCount returns the labels ordered by descending count, ties broken alphabetically.
func (h Histogram) ByCount() []string {
	labels := h.Labels()
	sort.SliceStable(labels, func(i, j int) bool {
		return h[labels[i]] > h[labels[j]]
	})
	return labels
}

// Clone returns an independent copy of h. A nil histogram clones to an empty one.
func (h Histogram) Clone() Histogram {
	c := make(Histogram, len(h))
	for label, n := range h {
		c[label] = n
	}
	return c
}
