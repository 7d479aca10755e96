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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const TEMPLATE_TEXT = "{{TEXT}}"

const DefaultStarPrompt = "Rate the sentiment of the following comment on a scale from 1 (very negative) to 5 (very positive). " +
	"Answer with a single digit only.\n\nComment:\n" + TEMPLATE_TEXT

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	starDigit  = regexp.MustCompile(`[1-5]`)
)

// Generator is the subset of the ollama client used for rating
type Generator interface {
	Generate(ctx context.Context, req *ollama.GenerateRequest, fn ollama.GenerateResponseFunc) error
	List(ctx context.Context) (*ollama.ListResponse, error)
}

// OllamaRater asks a local LLM for a star rating
type OllamaRater struct {
	ModelName      string
	Prompt         string
	TimeoutSeconds uint
	Client         Generator
}

func NewOllamaRater(model string, prompt string, timeoutSeconds uint) (*OllamaRater, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultStarPrompt
	}

	return &OllamaRater{
		ModelName:      model,
		Prompt:         prompt,
		TimeoutSeconds: timeoutSeconds,
		Client:         client,
	}, nil
}

func (o *OllamaRater) ListModels(ctx context.Context) ([]string, error) {
	response, err := o.Client.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(response.Models))
	for _, model := range response.Models {
		names = append(names, model.Name)
	}

	return names, nil
}

func (o *OllamaRater) query(ctx context.Context, prompt string) (string, error) {
	if o.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	stream := false
	var response strings.Builder
	err := o.Client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.ModelName,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.0,
		},
	}, func(res ollama.GenerateResponse) error {
		response.WriteString(res.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return removeThinkBlock(response.String()), nil
}

func (o *OllamaRater) Rate(ctx context.Context, text string) (Rating, error) {
	answer, err := o.query(ctx, strings.ReplaceAll(o.Prompt, TEMPLATE_TEXT, text))
	if err != nil {
		return Rating{}, fmt.Errorf("ollama query failed: %w", err)
	}

	stars, err := parseStars(answer)
	if err != nil {
		return Rating{}, err
	}

	// LLM answers carry no probability
	return Rating{Label: StarLabel(stars), Confidence: 1.0}, nil
}

func parseStars(answer string) (int, error) {
	digit := starDigit.FindString(answer)
	if digit == "" {
		return 0, fmt.Errorf("%w: no star digit in answer %q", ErrUnknownLabel, answer)
	}

	return strconv.Atoi(digit)
}

func removeThinkBlock(input string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(input, ""))
}
