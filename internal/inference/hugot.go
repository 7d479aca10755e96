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
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const DefaultStarModel = "nlptown/bert-base-multilingual-uncased-sentiment"

// HugotRater runs a huggingface star classification model locally
type HugotRater struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// localModelPath mirrors the directory name hugot.DownloadModel produces
func localModelPath(modelDir string, modelName string) string {
	return filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
}

// NewHugotRater loads the model from modelPath or, if empty, from modelDir,
// downloading modelName there first when it is missing.
func NewHugotRater(modelName string, modelDir string, modelPath string, logger *slog.Logger) (*HugotRater, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if modelName == "" {
		modelName = DefaultStarModel
	}

	if modelPath == "" {
		if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create model directory: %w", err)
		}

		modelPath = localModelPath(modelDir, modelName)
		if _, err := os.Stat(modelPath); os.IsNotExist(err) {
			logger.Info("Model not found, downloading...", slog.String("model", modelName))
			modelPath, err = hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
			if err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", modelName, err)
			}
			logger.Info("Model downloaded successfully", slog.String("path", modelPath))
		} else {
			logger.Info("Using existing model", slog.String("path", modelPath))
		}
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "starSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize classification pipeline: %w", err)
	}

	return &HugotRater{
		session:  session,
		pipeline: pipeline,
	}, nil
}

func (h *HugotRater) Rate(ctx context.Context, text string) (Rating, error) {
	if err := ctx.Err(); err != nil {
		return Rating{}, err
	}

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Rating{}, err
	}

	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return Rating{}, errors.New("classifier returned no labels")
	}

	best := output.ClassificationOutputs[0][0]
	for _, candidate := range output.ClassificationOutputs[0][1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	return Rating{Label: best.Label, Confidence: float64(best.Score)}, nil
}

func (h *HugotRater) Close() error {
	return h.session.Destroy()
}
