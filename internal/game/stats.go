package game

import (
	"fmt"
	"sort"
	"strings"
)

// ChiSquareCritical5DF is the chi-square critical value for 5 degrees of
// freedom at p = 0.001. Three cups give 3! = 6 orderings.
const ChiSquareCritical5DF = 20.515

// ChiSquareCritical2DF is the p = 0.001 critical value for 2 degrees of
// freedom, i.e. the ball landing in one of three slots.
const ChiSquareCritical2DF = 13.816

// PermutationCounter tallies how often each left-to-right ordering of cup ids
// is observed.
type PermutationCounter struct {
	counts map[string]int
	total  int
}

func NewPermutationCounter() *PermutationCounter {
	return &PermutationCounter{counts: make(map[string]int)}
}

func orderKey(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, "-")
}

// Add records the ordering of s.
func (c *PermutationCounter) Add(s State) {
	c.counts[orderKey(s.Order())]++
	c.total++
}

func (c *PermutationCounter) Total() int {
	return c.total
}

// Counts returns a copy of the tallies keyed by ordering, e.g. "2-1-3".
func (c *PermutationCounter) Counts() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Keys returns the observed orderings sorted.
func (c *PermutationCounter) Keys() []string {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ChiSquare compares the tallies against a uniform distribution over the
// buckets orderings. Unobserved orderings count as zero.
func (c *PermutationCounter) ChiSquare(buckets int) float64 {
	if c.total == 0 || buckets <= 0 {
		return 0
	}
	expected := float64(c.total) / float64(buckets)
	chi := 0.0
	seen := 0
	for _, observed := range c.counts {
		d := float64(observed) - expected
		chi += d * d / expected
		seen++
	}
	// missing buckets each contribute (0-E)^2/E = E
	if seen < buckets {
		chi += float64(buckets-seen) * expected
	}
	return chi
}

// ChiSquareUniform compares observed counts against an even spread over
// len(counts) buckets.
func ChiSquareUniform(counts []int) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 || len(counts) == 0 {
		return 0
	}
	expected := float64(total) / float64(len(counts))
	chi := 0.0
	for _, n := range counts {
		d := float64(n) - expected
		chi += d * d / expected
	}
	return chi
}

// Permutations returns n! for small n.
func Permutations(n int) int {
	p := 1
	for i := 2; i <= n; i++ {
		p *= i
	}
	return p
}
