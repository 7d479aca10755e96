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
	"fmt"
	"strconv"
)

// Record is a single classified comment of a video.
type Record struct {
	VideoID     string  `json:"source_id" db:"source_id"`
	Author      string  `json:"author" db:"author"`
	Text        string  `json:"text" db:"text"`
	LikeCount   int64   `json:"like_count" db:"like_count"`
	Polarity    float64 `json:"polarity" db:"polarity"`
	PublishedAt string  `json:"published_at" db:"published_at"` // ISO-8601 as returned by the API

	// Set when the classifier failed and Polarity is the neutral substitute
	ClassificationFailed bool `json:"-" db:"-"`
}

// Columns is the fixed column order shared by every exporter
var Columns = []string{
	"source_id",
	"author",
	"text",
	"like_count",
	"polarity",
	"published_at",
}

// Row returns the record's fields as strings in Columns order
func (r Record) Row() []string {
	return []string{
		r.VideoID,
		r.Author,
		r.Text,
		strconv.FormatInt(r.LikeCount, 10),
		strconv.FormatFloat(r.Polarity, 'f', -1, 64),
		r.PublishedAt,
	}
}

// FromRow parses a row produced by Row
func FromRow(row []string) (Record, error) {
	if len(row) < len(Columns) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}

	likes, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad like_count %q: %w", row[3], err)
	}

	polarity, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad polarity %q: %w", row[4], err)
	}

	return Record{
		VideoID:     row[0],
		Author:      row[1],
		Text:        row[2],
		LikeCount:   likes,
		Polarity:    polarity,
		PublishedAt: row[5],
	}, nil
}

// Polarities extracts polarity values in record order
func Polarities(records []Record) []float64 {
	polarities := make([]float64, 0, len(records))
	for _, record := range records {
		polarities = append(polarities, record.Polarity)
	}

	return polarities
}
