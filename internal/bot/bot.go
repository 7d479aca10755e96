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

package bot

import (
	"Unbewohnte/YTCS/internal/config"
	"Unbewohnte/YTCS/internal/inference"
	"Unbewohnte/YTCS/internal/pipeline"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Store is the read side of the comment database
type Store interface {
	Polarities(ctx context.Context, videoID string) ([]float64, error)
	CountComments(ctx context.Context) (int64, error)
}

type Deps struct {
	Config *config.Config
	Runner Runner
	// Nil when SQLite export is disabled
	Store Store
	// Nil unless the ollama backend is in use
	Ollama *inference.OllamaRater
	Logger *slog.Logger
}

type Bot struct {
	api      *tgbotapi.BotAPI
	conf     *config.Config
	runner   Runner
	store    Store
	ollama   *inference.OllamaRater
	logger   *slog.Logger
	commands []Command

	// One pipeline run at a time, the classifier is not shared
	runMu  sync.Mutex
	confMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []func(string)
}

func NewBot(deps Deps) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bot := &Bot{
		conf:   deps.Config,
		runner: deps.Runner,
		store:  deps.Store,
		ollama: deps.Ollama,
		logger: logger.With("component", "bot"),
	}
	bot.init()

	return bot
}

// Progress forwards a pipeline progress line to every listener
func (bot *Bot) Progress(message string) {
	bot.listenersMu.Lock()
	listeners := append([]func(string){}, bot.listeners...)
	bot.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(message)
	}
}

func (bot *Bot) AddProgressListener(listener func(string)) {
	bot.listenersMu.Lock()
	defer bot.listenersMu.Unlock()
	bot.listeners = append(bot.listeners, listener)
}

func (bot *Bot) init() {
	bot.NewCommand(Command{
		Name:        "help",
		Description: "Mostrar a mensagem de ajuda",
		Example:     "help comments",
		Group:       "Geral",
		Call:        bot.Help,
	})

	bot.NewCommand(Command{
		Name:        "about",
		Description: "Informações sobre o bot",
		Group:       "Geral",
		Call:        bot.About,
	})

	bot.NewCommand(Command{
		Name:        "conf",
		Description: "Mostrar a configuração atual",
		Group:       "Geral",
		Call:        bot.PrintConfig,
	})

	bot.NewCommand(Command{
		Name:        "comments",
		Description: "Buscar e classificar os comentários de um ou mais vídeos",
		Example:     "comments https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Group:       "Análise",
		Call:        bot.Comments,
	})

	bot.NewCommand(Command{
		Name:        "stats",
		Description: "Distribuição de sentimento dos comentários salvos, de todos os vídeos ou de um só",
		Example:     "stats dQw4w9WgXcQ",
		Group:       "Análise",
		Call:        bot.Stats,
	})

	bot.NewCommand(Command{
		Name:        "files",
		Description: "Listar os arquivos exportados",
		Group:       "Análise",
		Call:        bot.Files,
	})

	bot.NewCommand(Command{
		Name:        "setmax",
		Description: "Alterar o número máximo de comentários por vídeo",
		Example:     "setmax 500",
		Group:       "Filtros",
		Call:        bot.SetMaxResults,
	})

	bot.NewCommand(Command{
		Name:        "setminlikes",
		Description: "Alterar o número mínimo de curtidas",
		Example:     "setminlikes 10",
		Group:       "Filtros",
		Call:        bot.SetMinLikes,
	})

	bot.NewCommand(Command{
		Name:        "setpolarity",
		Description: "Alterar o intervalo de polaridade aceito",
		Example:     "setpolarity -1 0",
		Group:       "Filtros",
		Call:        bot.SetPolarityRange,
	})

	bot.NewCommand(Command{
		Name:        "setsort",
		Description: "Alterar a ordenação: likes, date, polarity ou none; asc ou desc",
		Example:     "setsort likes desc",
		Group:       "Filtros",
		Call:        bot.SetSort,
	})

	bot.NewCommand(Command{
		Name:        "togglepublic",
		Description: "Ativar ou desativar o acesso público ao bot",
		Group:       "Telegram",
		Call:        bot.TogglePublicity,
	})

	bot.NewCommand(Command{
		Name:        "adduser",
		Description: "Permitir o acesso de um usuário pelo ID",
		Example:     "adduser 5293210034",
		Group:       "Telegram",
		Call:        bot.AddUser,
	})

	bot.NewCommand(Command{
		Name:        "rmuser",
		Description: "Remover o acesso de um usuário pelo ID",
		Example:     "rmuser 5293210034",
		Group:       "Telegram",
		Call:        bot.RemoveUser,
	})

	bot.NewCommand(Command{
		Name:        "models",
		Description: "Listar os modelos locais do Ollama",
		Group:       "LLM",
		Call:        bot.ListModels,
	})

	bot.NewCommand(Command{
		Name:        "setmodel",
		Description: "Trocar o modelo do Ollama usado na classificação",
		Example:     "setmodel gemma3:12b",
		Group:       "LLM",
		Call:        bot.SetModel,
	})

	bot.NewCommand(Command{
		Name:        "setprompt",
		Description: "Trocar o prompt de classificação, deve conter " + inference.TEMPLATE_TEXT,
		Example:     "setprompt Dê uma nota de 1 a 5 ao comentário: {{TEXT}}",
		Group:       "LLM",
		Call:        bot.SetPrompt,
	})
}

// Execute runs a text command the way both front ends receive it. A bare URL
// is treated as "comments URL".
func (bot *Bot) Execute(text string) (string, error) {
	text = strings.TrimSpace(text)
	name, args, _ := strings.Cut(text, " ")
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	// Telegram appends the bot name in groups: /stats@ytcs_bot
	name, _, _ = strings.Cut(name, "@")

	if command := bot.CommandByName(name); command != nil {
		return command.Call(strings.TrimSpace(args))
	}

	if strings.HasPrefix(text, "http") || strings.Contains(text, "v=") {
		return bot.Comments(text)
	}

	return "", &unknownCommandError{input: name, suggestions: bot.findSimilarCommands(name)}
}

type unknownCommandError struct {
	input       string
	suggestions []string
}

func (e *unknownCommandError) Error() string {
	return fmt.Sprintf("comando desconhecido: %q", e.input)
}

func (bot *Bot) suggestionsMessage(err *unknownCommandError) string {
	if len(err.suggestions) == 0 {
		return fmt.Sprintf("O comando `%s` não existe.", err.input)
	}

	message := "Comando desconhecido. Talvez você quis dizer:\n"
	for _, name := range err.suggestions {
		if command := bot.CommandByName(name); command != nil {
			message += fmt.Sprintf("`%s` - %s\n", command.Name, command.Description)
		}
	}
	message += "\nPara ajuda use `help [comando]`"

	return message
}

func (bot *Bot) allowed(userID int64) bool {
	bot.confMu.Lock()
	defer bot.confMu.Unlock()

	if bot.conf.Telegram.Public {
		return true
	}

	for _, allowedID := range bot.conf.Telegram.AllowedUserIDs {
		if userID == allowedID {
			return true
		}
	}

	return false
}

// StartTelegram polls Telegram for updates until ctx is done, reconnecting
// with exponential backoff
func (bot *Bot) StartTelegram(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(bot.conf.Telegram.ApiToken)
	if err != nil {
		return err
	}
	bot.api = api
	bot.api.Debug = bot.conf.Debug

	bot.logger.Info("Authorized on Telegram", "username", bot.api.Self.UserName)

	retryDelay := 5 * time.Second
	for {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := bot.api.GetUpdatesChan(u)

	receive:
		for {
			select {
			case <-ctx.Done():
				bot.api.StopReceivingUpdates()
				return nil
			case update, ok := <-updates:
				if !ok {
					break receive
				}
				if update.Message == nil {
					continue
				}
				go bot.handleMessage(update.Message)
			}
		}

		bot.logger.Warn("Lost connection to Telegram, reconnecting", "delay", retryDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
		if retryDelay < 300*time.Second {
			retryDelay *= 2
		}
	}
}

func (bot *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	bot.logger.Info("Telegram message", "user", message.From.UserName, "text", message.Text)

	if !bot.allowed(message.From.ID) {
		bot.send(message.Chat.ID, "Você não tem permissão para usar este bot!", message.MessageID)
		bot.logger.Debug("Rejected user", "user_id", message.From.ID)
		return
	}

	name, _, _ := strings.Cut(strings.TrimSpace(message.Text), " ")
	if strings.EqualFold(strings.TrimPrefix(name, "/"), "files") {
		bot.sendFiles(message.Chat.ID, message.MessageID)
		return
	}

	response, err := bot.Execute(message.Text)
	if err != nil {
		var unknown *unknownCommandError
		if errors.As(err, &unknown) {
			bot.send(message.Chat.ID, bot.suggestionsMessage(unknown), message.MessageID)
			return
		}
		bot.sendError(message.Chat.ID, err.Error(), message.MessageID)
		return
	}

	bot.send(message.Chat.ID, response, message.MessageID)
}

func (bot *Bot) sendFiles(chatID int64, replyTo int) {
	files := bot.conf.Export.Files()
	if len(files) == 0 {
		bot.sendError(chatID, "Nenhum arquivo exportado ainda", replyTo)
		return
	}

	for _, path := range files {
		document := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
		document.ReplyToMessageID = replyTo
		if _, err := bot.api.Send(document); err != nil {
			bot.logger.Error("Failed to send file", "path", path, "error", err)
			bot.sendError(chatID, fmt.Sprintf("Não foi possível enviar %s", path), replyTo)
		}
	}
}
