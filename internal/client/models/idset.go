package models

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// IDSet is an insertion-ordered set of access-level ids.
// The zero value is an empty set and marshals as [].
type IDSet []int64

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	return slices.Contains(s, id)
}

// Add inserts id unless it is already present.
func (s *IDSet) Add(id int64) {
	if !s.Has(id) {
		*s = append(*s, id)
	}
}

// Remove deletes id if present.
func (s *IDSet) Remove(id int64) {
	*s = slices.DeleteFunc(*s, func(x int64) bool { return x == id })
}

// Toggle adds id when on is true and removes it otherwise, mirroring a checkbox.
func (s *IDSet) Toggle(id int64, on bool) {
	if on {
		s.Add(id)
		return
	}
	s.Remove(id)
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// Join renders the ids comma-separated, as expected by multipart uploads.
func (s IDSet) Join() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(s))
}
