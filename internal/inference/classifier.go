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

package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// MaxInputChars is the hard input limit of the star model
const MaxInputChars = 512

var (
	ErrEmptyText    = errors.New("empty text")
	ErrUnknownLabel = errors.New("unknown star label")
)

// Rating is the raw output of a star classifier
type Rating struct {
	Label      string
	Confidence float64
}

// StarRater rates text on the 1..5 star scale
type StarRater interface {
	Rate(ctx context.Context, text string) (Rating, error)
}

var starPolarity = map[string]float64{
	"1 star":  -1.0,
	"2 stars": -0.5,
	"3 stars": 0.0,
	"4 stars": 0.5,
	"5 stars": 1.0,
}

// Polarity maps a star label onto [-1, 1]. Confidence plays no part in it.
func Polarity(label string) (float64, bool) {
	polarity, ok := starPolarity[strings.ToLower(strings.TrimSpace(label))]
	return polarity, ok
}

// StarLabel returns the canonical label for a star count
func StarLabel(stars int) string {
	if stars == 1 {
		return "1 star"
	}
	return fmt.Sprintf("%d stars", stars)
}

// Result of a classification. Degraded results carry the neutral polarity
// and the error that caused it.
type Result struct {
	Polarity   float64
	Label      string
	Confidence float64
	Degraded   bool
	Err        error
}

// Classifier turns star ratings into polarities and never fails
type Classifier struct {
	rater  StarRater
	logger *slog.Logger
}

func NewClassifier(rater StarRater, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		rater:  rater,
		logger: logger.With("component", "classifier"),
	}
}

// Truncate cuts text to the first MaxInputChars characters
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxInputChars {
		return text
	}

	return string(runes[:MaxInputChars])
}

func (c *Classifier) Classify(ctx context.Context, text string) Result {
	rating, err := c.rate(ctx, Truncate(text))
	if err != nil {
		c.logger.Error("Sentiment analysis failed", slog.String("error", err.Error()))
		return Result{Polarity: 0.0, Degraded: true, Err: err}
	}

	polarity, ok := Polarity(rating.Label)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownLabel, rating.Label)
		c.logger.Error("Sentiment analysis failed", slog.String("error", err.Error()))
		return Result{Polarity: 0.0, Label: rating.Label, Confidence: rating.Confidence, Degraded: true, Err: err}
	}

	return Result{
		Polarity:   polarity,
		Label:      rating.Label,
		Confidence: rating.Confidence,
	}
}

func (c *Classifier) rate(ctx context.Context, text string) (rating Rating, err error) {
	if strings.TrimSpace(text) == "" {
		return Rating{}, ErrEmptyText
	}
	if c.rater == nil {
		return Rating{}, errors.New("no classifier backend configured")
	}

	// hugot and onnx backends may panic on malformed model output
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()

	return c.rater.Rate(ctx, text)
}
