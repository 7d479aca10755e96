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

package pipeline

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/export"
	"Unbewohnte/YTCS/internal/report"
	"Unbewohnte/YTCS/internal/youtube"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

var ErrNoInput = errors.New("no video URLs given")

type Fetcher interface {
	Fetch(ctx context.Context, videoID string, maxResults int) ([]comment.Record, error)
}

type Request struct {
	ID         uuid.UUID
	URLs       []string
	MaxResults int
	Filter     comment.Filter
	Sort       comment.SortKey
	Descending bool
}

func NewRequest(urls []string, maxResults int) Request {
	return Request{
		ID:         uuid.New(),
		URLs:       urls,
		MaxResults: maxResults,
		Filter:     comment.DefaultFilter(),
		Sort:       comment.SortNone,
		Descending: true,
	}
}

type VideoResult struct {
	Input   string
	VideoID string
	Fetched int
	Kept    int
	Err     error
}

type WriteResult struct {
	Target string
	Err    error
}

type Result struct {
	RequestID uuid.UUID
	Records   []comment.Record
	Videos    []VideoResult
	Degraded  int
	Writes    []WriteResult
	Summary   report.Summary
}

// Failed reports inputs that were rejected or whose fetch stopped early
func (r *Result) Failed() []VideoResult {
	var failed []VideoResult
	for _, video := range r.Videos {
		if video.Err != nil {
			failed = append(failed, video)
		}
	}
	return failed
}

type Pipeline struct {
	fetcher Fetcher
	writers []export.Writer
	logger  *slog.Logger

	// Called with human readable progress lines, may be nil
	OnProgress func(message string)
}

func New(fetcher Fetcher, writers []export.Writer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		fetcher: fetcher,
		writers: writers,
		logger:  logger.With("component", "pipeline"),
	}
}

func (p *Pipeline) progress(format string, args ...any) {
	if p.OnProgress != nil {
		p.OnProgress(fmt.Sprintf(format, args...))
	}
}

// Run fetches every URL in order, filters each video's records, accumulates
// them, sorts the batch once and hands it to every writer. Per-input and
// per-writer failures are recorded in the result instead of aborting the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.URLs) == 0 {
		return nil, ErrNoInput
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	logger := p.logger.With("request_id", req.ID.String())
	result := &Result{
		RequestID: req.ID,
		Records:   []comment.Record{},
	}

	for _, url := range req.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		video := VideoResult{Input: url}
		videoID, err := youtube.ExtractVideoID(url)
		if err != nil {
			logger.Warn("Skipping invalid input", "input", url, "error", err)
			p.progress("URL inválida: %s", url)
			video.Err = err
			result.Videos = append(result.Videos, video)
			continue
		}
		video.VideoID = videoID

		p.progress("Buscando comentários de %s...", videoID)
		records, err := p.fetcher.Fetch(ctx, videoID, req.MaxResults)
		if err != nil {
			logger.Error("Fetch stopped early", "video_id", videoID, "fetched", len(records), "error", err)
			video.Err = err
		}

		for _, record := range records {
			if record.ClassificationFailed {
				result.Degraded++
			}
		}

		kept := req.Filter.Apply(records)
		video.Fetched = len(records)
		video.Kept = len(kept)
		result.Videos = append(result.Videos, video)
		result.Records = append(result.Records, kept...)

		logger.Info("Video processed", "video_id", videoID, "fetched", video.Fetched, "kept", video.Kept)
		p.progress("%s: %d comentários, %d após filtros", videoID, video.Fetched, video.Kept)
	}

	result.Records = comment.Sort(result.Records, req.Sort, req.Descending)
	result.Summary = report.Summarize(comment.Polarities(result.Records))

	if len(result.Records) == 0 {
		logger.Info("Nothing to export")
		return result, nil
	}

	for _, writer := range p.writers {
		err := writer.Write(ctx, result.Records)
		if err != nil {
			logger.Error("Export failed", "target", writer.Name(), "error", err)
			p.progress("Falha ao exportar para %s: %s", writer.Name(), err)
		} else {
			logger.Info("Exported", "target", writer.Name(), "records", len(result.Records))
			p.progress("Exportado: %s", writer.Name())
		}
		result.Writes = append(result.Writes, WriteResult{Target: writer.Name(), Err: err})
	}

	return result, nil
}

// Markdown renders the run outcome followed by the sentiment summary
func (r *Result) Markdown() string {
	var out strings.Builder

	for _, video := range r.Videos {
		switch {
		case video.VideoID == "":
			out.WriteString(fmt.Sprintf("- `%s`: URL inválida\n", video.Input))
		case video.Err != nil:
			out.WriteString(fmt.Sprintf("- `%s`: %d comentários (%d após filtros), interrompido: %s\n",
				video.VideoID, video.Fetched, video.Kept, video.Err))
		default:
			out.WriteString(fmt.Sprintf("- `%s`: %d comentários (%d após filtros)\n",
				video.VideoID, video.Fetched, video.Kept))
		}
	}

	if r.Degraded > 0 {
		out.WriteString(fmt.Sprintf("\nClassificações com falha (neutro atribuído): %d\n", r.Degraded))
	}

	if len(r.Writes) > 0 {
		out.WriteString("\n*Exportação:*\n")
		for _, write := range r.Writes {
			if write.Err != nil {
				out.WriteString(fmt.Sprintf("- %s: erro: %s\n", write.Target, write.Err))
			} else {
				out.WriteString(fmt.Sprintf("- %s\n", write.Target))
			}
		}
	}

	out.WriteString("\n")
	out.WriteString(r.Summary.Markdown())

	return out.String()
}
