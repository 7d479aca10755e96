/*
   YTCS - YouTube Comment Sentiment
   Copyright (C) 2025  Unbewohnte (Kasyanov Nikolay Alexeevich)

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package comment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

type SortKey string

const (
	SortNone     SortKey = ""
	SortLikes    SortKey = "likes"
	SortDate     SortKey = "date"
	SortPolarity SortKey = "polarity"
)

// ParseSortKey validates user input. An empty string means "keep fetch order"
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case SortNone, SortLikes, SortDate, SortPolarity:
		return key, nil
	default:
		return SortNone, fmt.Errorf("%w: %q (expected likes, date or polarity)", ErrUnknownSortKey, s)
	}
}

type Filter struct {
	MinLikes    int64   `json:"min_likes"`
	MinPolarity float64 `json:"min_polarity"`
	MaxPolarity float64 `json:"max_polarity"`
}

// DefaultFilter lets every record through
func DefaultFilter() Filter {
	return Filter{
		MinLikes:    0,
		MinPolarity: -1,
		MaxPolarity: 1,
	}
}

func (f Filter) Match(r Record) bool {
	return r.LikeCount >= f.MinLikes &&
		r.Polarity >= f.MinPolarity &&
		r.Polarity <= f.MaxPolarity
}

// Apply returns the matching records in their original order
func (f Filter) Apply(records []Record) []Record {
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if f.Match(record) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// Sort returns a stably sorted copy of records. Unrecognized keys keep the
// input order.
func Sort(records []Record, key SortKey, descending bool) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)

	var less func(a, b Record) bool
	switch key {
	case SortLikes:
		less = func(a, b Record) bool { return a.LikeCount < b.LikeCount }
	case SortDate:
		less = func(a, b Record) bool { return a.PublishedAt < b.PublishedAt }
	case SortPolarity:
		less = func(a, b Record) bool { return a.Polarity < b.Polarity }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	return sorted
}
