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
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

type Config struct {
	APIKey          string `json:"api_key"`
	CredentialsFile string `json:"credentials_file"`
	CredentialsJSON []byte `json:"-"`
	PageSize        int    `json:"page_size"`
}

// APISource lists comment threads through the YouTube Data API v3
type APISource struct {
	service *ytapi.Service
}

func NewAPISource(ctx context.Context, conf Config) (*APISource, error) {
	var opt option.ClientOption
	switch {
	case len(conf.CredentialsJSON) > 0:
		// Service account
		jwtConfig, err := google.JWTConfigFromJSON(conf.CredentialsJSON, ytapi.YoutubeReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		opt = option.WithHTTPClient(jwtConfig.Client(ctx))
	case conf.APIKey != "":
		opt = option.WithAPIKey(conf.APIKey)
	default:
		return nil, errors.New("neither an API key nor service account credentials were provided")
	}

	service, err := ytapi.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &APISource{service: service}, nil
}

func (s *APISource) ListPage(ctx context.Context, videoID string, pageToken string, maxResults int64) (*Page, error) {
	call := s.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		TextFormat("plainText").
		MaxResults(maxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:         make([]Item, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	for _, thread := range response.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}

		snippet := thread.Snippet.TopLevelComment.Snippet
		page.Items = append(page.Items, Item{
			Author:      snippet.AuthorDisplayName,
			Text:        snippet.TextDisplay,
			LikeCount:   snippet.LikeCount,
			PublishedAt: snippet.PublishedAt,
		})
	}

	return page, nil
}
