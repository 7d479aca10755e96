package bot

import (
	"Unbewohnte/YTCS/internal/inference"
	"context"
	"errors"
	"fmt"
	"strings"
)

var errNoOllama = errors.New("o classificador atual não usa o Ollama")

func (bot *Bot) ListModels(args string) (string, error) {
	if bot.ollama == nil {
		return "", errNoOllama
	}

	models, err := bot.ollama.ListModels(context.Background())
	if err != nil {
		return "", fmt.Errorf("não foi possível listar os modelos locais: %w", err)
	}

	response := "Modelos disponíveis:\n"
	for _, model := range models {
		response += fmt.Sprintf("`%s`\n", model)
	}
	response += fmt.Sprintf("\nAtual:\n `%s`\n", bot.ollama.ModelName)

	return response, nil
}

func (bot *Bot) SetModel(args string) (string, error) {
	if bot.ollama == nil {
		return "", errNoOllama
	}
	if args == "" {
		return "", errors.New("nome do modelo não informado")
	}

	newModel := strings.TrimSpace(args)
	availableModels, err := bot.ollama.ListModels(context.Background())
	if err != nil {
		return "", fmt.Errorf("não foi possível listar os modelos locais: %w", err)
	}

	for _, availableModel := range availableModels {
		if availableModel != newModel {
			continue
		}

		// The rater must not change under a running classification
		bot.runMu.Lock()
		bot.ollama.ModelName = newModel
		bot.runMu.Unlock()

		bot.updateConfig(func() error {
			bot.conf.Classifier.Ollama.Model = newModel
			return nil
		})
		return fmt.Sprintf("Modelo alterado para \"%s\"", newModel), nil
	}

	return fmt.Sprintf("Esse modelo não existe, mantido \"%s\"", bot.ollama.ModelName), nil
}

func (bot *Bot) SetPrompt(args string) (string, error) {
	if bot.ollama == nil {
		return "", errNoOllama
	}
	if !strings.Contains(args, inference.TEMPLATE_TEXT) {
		return "", fmt.Errorf("o prompt deve conter %s", inference.TEMPLATE_TEXT)
	}

	bot.runMu.Lock()
	bot.ollama.Prompt = args
	bot.runMu.Unlock()

	bot.updateConfig(func() error {
		bot.conf.Classifier.Ollama.Prompt = args
		return nil
	})

	return "Prompt de classificação alterado.", nil
}
