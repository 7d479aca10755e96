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

package report

import (
	"fmt"
	"strings"
)

const (
	NegativeThreshold = -0.3
	PositiveThreshold = 0.3

	HistogramBins = 20
)

type Distribution struct {
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Positive int `json:"positive"`
}

// Bucket splits polarities into negative (< -0.3), neutral and positive (> 0.3)
func Bucket(polarities []float64) Distribution {
	var d Distribution
	for _, p := range polarities {
		switch {
		case p < NegativeThreshold:
			d.Negative++
		case p > PositiveThreshold:
			d.Positive++
		default:
			d.Neutral++
		}
	}

	return d
}

func (d Distribution) Total() int {
	return d.Negative + d.Neutral + d.Positive
}

// Percentages returns the share of every category, zeros for an empty distribution
func (d Distribution) Percentages() (negative, neutral, positive float64) {
	total := d.Total()
	if total == 0 {
		return 0, 0, 0
	}

	return percent(d.Negative, total), percent(d.Neutral, total), percent(d.Positive, total)
}

func percent(part int, total int) float64 {
	return float64(part) * 100 / float64(total)
}

// Histogram counts polarities in equal-width bins over [Min, Max]. The last
// bin is closed on the right.
type Histogram struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Counts []int   `json:"counts"`
}

func NewHistogram(polarities []float64, bins int) Histogram {
	if bins <= 0 {
		bins = HistogramBins
	}

	h := Histogram{Min: -1, Max: 1, Counts: make([]int, bins)}
	width := (h.Max - h.Min) / float64(bins)
	for _, p := range polarities {
		if p < h.Min || p > h.Max {
			continue
		}

		bin := int((p - h.Min) / width)
		if bin >= bins {
			bin = bins - 1
		}
		h.Counts[bin]++
	}

	return h
}

// BinStart returns the lower edge of bin i
func (h Histogram) BinStart(i int) float64 {
	return h.Min + float64(i)*(h.Max-h.Min)/float64(len(h.Counts))
}

// Summary is what the front ends show after a run or a stats query
type Summary struct {
	Distribution Distribution `json:"distribution"`
	Histogram    Histogram    `json:"histogram"`
	Negative     float64      `json:"negative_percent"`
	Neutral      float64      `json:"neutral_percent"`
	Positive     float64      `json:"positive_percent"`
}

func Summarize(polarities []float64) Summary {
	distribution := Bucket(polarities)
	negative, neutral, positive := distribution.Percentages()

	return Summary{
		Distribution: distribution,
		Histogram:    NewHistogram(polarities, HistogramBins),
		Negative:     negative,
		Neutral:      neutral,
		Positive:     positive,
	}
}

// Markdown renders the summary for the bot and the web console
func (s Summary) Markdown() string {
	if s.Distribution.Total() == 0 {
		return "Nenhum dado de sentimento encontrado."
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("*Comentários:* %d\n\n", s.Distribution.Total()))
	out.WriteString(fmt.Sprintf("- Negativo: %d (%.1f%%)\n", s.Distribution.Negative, s.Negative))
	out.WriteString(fmt.Sprintf("- Neutro: %d (%.1f%%)\n", s.Distribution.Neutral, s.Neutral))
	out.WriteString(fmt.Sprintf("- Positivo: %d (%.1f%%)\n", s.Distribution.Positive, s.Positive))

	out.WriteString("\n```\n")
	out.WriteString(s.Histogram.Bars(30))
	out.WriteString("```\n")

	return out.String()
}

// Bars draws the non-empty bins as a text bar chart scaled to width
func (h Histogram) Bars(width int) string {
	peak := 0
	for _, count := range h.Counts {
		peak = max(peak, count)
	}
	if peak == 0 {
		return ""
	}

	var out strings.Builder
	for i, count := range h.Counts {
		if count == 0 {
			continue
		}

		bar := count * width / peak
		if bar == 0 {
			bar = 1
		}
		out.WriteString(fmt.Sprintf("%+.1f %s %d\n", h.BinStart(i), strings.Repeat("#", bar), count))
	}

	return out.String()
}
