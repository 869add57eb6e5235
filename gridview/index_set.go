package gridview

import (
	"fmt"
	"math"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// IndexSet is an ordered set of item indexes stored as runs of consecutive
// indexes. Runs are disjoint and never adjacent, so a set holding every
// item of a huge collection is a single entry.
// The zero value is an empty set ready to use.
type IndexSet struct {
	runs  *treemap.Map // start -> end, end exclusive
	count int
}

// NewIndexSet returns a set holding the given indexes.
func NewIndexSet(indexes ...int) *IndexSet {
	s := &IndexSet{}
	for _, i := range indexes {
		s.Add(i)
	}
	return s
}

// NewIndexSetInRange returns a set holding every index in [start, end).
func NewIndexSetInRange(start, end int) *IndexSet {
	s := &IndexSet{}
	s.AddRange(start, end)
	return s
}

func (s *IndexSet) ensure() {
	if s.runs == nil {
		s.runs = treemap.NewWith(utils.IntComparator)
	}
}

// runAtOrBefore returns the run with the greatest start <= i.
func (s *IndexSet) runAtOrBefore(i int) (start, end int, ok bool) {
	if s == nil || s.runs == nil {
		return 0, 0, false
	}
	k, v := s.runs.Floor(i)
	if k == nil {
		return 0, 0, false
	}
	return k.(int), v.(int), true
}

// runAtOrAfter returns the run with the smallest start >= i.
func (s *IndexSet) runAtOrAfter(i int) (start, end int, ok bool) {
	if s == nil || s.runs == nil {
		return 0, 0, false
	}
	k, v := s.runs.Ceiling(i)
	if k == nil {
		return 0, 0, false
	}
	return k.(int), v.(int), true
}

// AddRange inserts every index in [start, end) and reports whether the set
// changed.
func (s *IndexSet) AddRange(start, end int) bool {
	if start >= end {
		return false
	}
	s.ensure()
	before := s.count

	if fs, fe, ok := s.runAtOrBefore(start); ok && fe >= start {
		if fe >= end {
			return false
		}
		s.runs.Remove(fs)
		s.count -= fe - fs
		start = fs
	}
	for {
		ns, ne, ok := s.runAtOrAfter(start)
		if !ok || ns > end {
			break
		}
		s.runs.Remove(ns)
		s.count -= ne - ns
		end = max(end, ne)
	}
	s.runs.Put(start, end)
	s.count += end - start
	return s.count != before
}

// RemoveRange deletes every index in [start, end) and reports whether the
// set changed.
func (s *IndexSet) RemoveRange(start, end int) bool {
	if start >= end || s.Len() == 0 {
		return false
	}
	before := s.count

	if fs, fe, ok := s.runAtOrBefore(start - 1); ok && fs < start && fe > start {
		s.runs.Put(fs, start)
		s.count -= fe - start
		if fe > end {
			s.runs.Put(end, fe)
			s.count += fe - end
			return true
		}
	}
	for {
		ns, ne, ok := s.runAtOrAfter(start)
		if !ok || ns >= end {
			break
		}
		s.runs.Remove(ns)
		s.count -= ne - ns
		if ne > end {
			s.runs.Put(end, ne)
			s.count += ne - end
			break
		}
	}
	return s.count != before
}

// Add inserts i and reports whether the set changed.
func (s *IndexSet) Add(i int) bool {
	return s.AddRange(i, i+1)
}

// Remove deletes i and reports whether the set changed.
func (s *IndexSet) Remove(i int) bool {
	return s.RemoveRange(i, i+1)
}

// Contains reports whether i is in the set.
func (s *IndexSet) Contains(i int) bool {
	_, end, ok := s.runAtOrBefore(i)
	return ok && i < end
}

// Len returns the number of indexes in the set.
func (s *IndexSet) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// EachRange calls fn for every run [start, end) in ascending order until fn
// returns false.
func (s *IndexSet) EachRange(fn func(start, end int) bool) {
	if s == nil || s.runs == nil {
		return
	}
	it := s.runs.Iterator()
	for it.Next() {
		if !fn(it.Key().(int), it.Value().(int)) {
			return
		}
	}
}

// Each calls fn for every index in ascending order until fn returns false.
func (s *IndexSet) Each(fn func(i int) bool) {
	s.EachRange(func(start, end int) bool {
		for i := start; i < end; i++ {
			if !fn(i) {
				return false
			}
		}
		return true
	})
}

// Indexes returns the members in ascending order.
func (s *IndexSet) Indexes() []int {
	out := make([]int, 0, s.Len())
	s.Each(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}

// First returns the lowest index, or -1 when the set is empty.
func (s *IndexSet) First() int {
	if s.Len() == 0 {
		return -1
	}
	k, _ := s.runs.Min()
	return k.(int)
}

// Last returns the highest index, or -1 when the set is empty.
func (s *IndexSet) Last() int {
	if s.Len() == 0 {
		return -1
	}
	_, v := s.runs.Max()
	return v.(int) - 1
}

// Clone returns an independent copy.
func (s *IndexSet) Clone() *IndexSet {
	c := &IndexSet{}
	s.EachRange(func(start, end int) bool {
		c.ensure()
		c.runs.Put(start, end)
		return true
	})
	c.count = s.Len()
	return c
}

func (s *IndexSet) boundaries() []int {
	var out []int
	s.EachRange(func(start, end int) bool {
		out = append(out, start, end)
		return true
	})
	return out
}

// Equal reports whether both sets hold the same indexes.
func (s *IndexSet) Equal(o *IndexSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	a, b := s.boundaries(), o.boundaries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Xor returns the symmetric difference of s and o. Membership flips at every
// run boundary of either set, so the result is read off the merged
// boundaries with shared ones cancelling out.
func (s *IndexSet) Xor(o *IndexSet) *IndexSet {
	a, b := s.boundaries(), o.boundaries()
	merged := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			merged = append(merged, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			merged = append(merged, b[j])
			j++
		default:
			i++
			j++
		}
	}

	out := &IndexSet{}
	for k := 0; k+1 < len(merged); k += 2 {
		out.AddRange(merged[k], merged[k+1])
	}
	return out
}

// Union returns the indexes in s or o.
func (s *IndexSet) Union(o *IndexSet) *IndexSet {
	out := s.Clone()
	o.EachRange(func(start, end int) bool {
		out.AddRange(start, end)
		return true
	})
	return out
}

// Clear empties the set and reports whether it changed.
func (s *IndexSet) Clear() bool {
	if s.Len() == 0 {
		return false
	}
	s.runs.Clear()
	s.count = 0
	return true
}

// RemoveFrom drops every index >= n and reports whether the set changed.
func (s *IndexSet) RemoveFrom(n int) bool {
	return s.RemoveRange(n, math.MaxInt)
}

func (s *IndexSet) String() string {
	parts := make([]string, 0, s.Len())
	s.Each(func(i int) bool {
		parts = append(parts, fmt.Sprint(i))
		return true
	})
	return "{" + strings.Join(parts, ",") + "}"
}
