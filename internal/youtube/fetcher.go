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

package youtube

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/inference"
	"context"
	"fmt"
	"log/slog"
)

// MaxPageSize is the largest page the comment API serves
const MaxPageSize = 100

// Item is one top level comment as listed by the API
type Item struct {
	Author      string
	Text        string
	LikeCount   int64
	PublishedAt string
}

type Page struct {
	Items         []Item
	NextPageToken string
}

// PageSource lists one page of comments of a video
type PageSource interface {
	ListPage(ctx context.Context, videoID string, pageToken string, maxResults int64) (*Page, error)
}

// Scorer is satisfied by *inference.Classifier
type Scorer interface {
	Classify(ctx context.Context, text string) inference.Result
}

type Fetcher struct {
	source   PageSource
	scorer   Scorer
	pageSize int
	logger   *slog.Logger
}

func NewFetcher(source PageSource, scorer Scorer, pageSize int, logger *slog.Logger) *Fetcher {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		source:   source,
		scorer:   scorer,
		pageSize: pageSize,
		logger:   logger.With("component", "fetcher"),
	}
}

// Fetch collects and classifies at most maxResults comments of a video. On a
// page error it stops and returns what was collected along with the error.
func (f *Fetcher) Fetch(ctx context.Context, videoID string, maxResults int) ([]comment.Record, error) {
	records := make([]comment.Record, 0)
	if maxResults <= 0 {
		return records, nil
	}

	logger := f.logger.With(slog.String("video_id", videoID))
	pageToken := ""
	pages := 0

	for {
		want := min(f.pageSize, maxResults-len(records))

		page, err := f.source.ListPage(ctx, videoID, pageToken, int64(want))
		if err != nil {
			logger.Error("Failed to fetch comments",
				slog.Int("page", pages+1),
				slog.Int("fetched", len(records)),
				slog.String("error", err.Error()))
			return records, fmt.Errorf("page %d of %s: %w", pages+1, videoID, err)
		}
		pages++

		for _, item := range page.Items {
			score := f.scorer.Classify(ctx, item.Text)
			records = append(records, comment.Record{
				VideoID:              videoID,
				Author:               item.Author,
				Text:                 item.Text,
				LikeCount:            max(item.LikeCount, 0),
				Polarity:             score.Polarity,
				PublishedAt:          item.PublishedAt,
				ClassificationFailed: score.Degraded,
			})

			if len(records)%10 == 0 {
				logger.Info("Processed comments", slog.Int("count", len(records)))
			}

			if len(records) >= maxResults {
				break
			}
		}

		if page.NextPageToken == "" || len(records) >= maxResults {
			break
		}
		pageToken = page.NextPageToken
	}

	logger.Debug("Fetch finished", slog.Int("pages", pages), slog.Int("count", len(records)))

	return records, nil
}
