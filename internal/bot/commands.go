package bot

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/pipeline"
	"Unbewohnte/YTCS/internal/report"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Command struct {
	Name        string
	Description string
	Example     string
	Group       string
	Call        func(string) (string, error)
}

func (bot *Bot) NewCommand(cmd Command) {
	bot.commands = append(bot.commands, cmd)
}

func (bot *Bot) CommandByName(name string) *Command {
	for i := range bot.commands {
		if bot.commands[i].Name == name {
			return &bot.commands[i]
		}
	}

	return nil
}

func constructCommandHelpMessage(command Command) string {
	commandHelp := ""
	commandHelp += fmt.Sprintf("\n*Comando:* \"%s\"\n*Descrição:* %s\n", command.Name, command.Description)
	if command.Example != "" {
		commandHelp += fmt.Sprintf("*Exemplo:* `%s`\n", command.Example)
	}

	return commandHelp
}

func (bot *Bot) Help(args string) (string, error) {
	if strings.TrimSpace(args) != "" {
		// Only the requested command
		command := bot.CommandByName(strings.ToLower(strings.TrimSpace(args)))
		if command != nil {
			return constructCommandHelpMessage(*command), nil
		}
	}

	var helpMessage string

	commandsByGroup := make(map[string][]Command)
	for _, command := range bot.commands {
		commandsByGroup[command.Group] = append(commandsByGroup[command.Group], command)
	}

	groups := []string{}
	for g := range commandsByGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		helpMessage += fmt.Sprintf("\n\n*[%s]*\n", group)
		for _, command := range commandsByGroup[group] {
			helpMessage += constructCommandHelpMessage(command)
		}
	}

	return helpMessage, nil
}

func (bot *Bot) About(args string) (string, error) {
	return `YTCS (YouTube Comment Sentiment).

Busca os comentários de vídeos do YouTube, classifica o sentimento de cada um (1 a 5 estrelas, polaridade de -1 a 1), filtra, ordena e exporta para CSV, JSON e SQLite.
Envie o link de um vídeo ou use o comando comments.

Licença: GPLv3
`, nil
}

// splitURLs accepts whitespace and comma separated links
func splitURLs(args string) []string {
	return strings.FieldsFunc(args, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func (bot *Bot) newRequest(urls []string) pipeline.Request {
	bot.confMu.Lock()
	defer bot.confMu.Unlock()

	defaults := bot.conf.Defaults
	req := pipeline.NewRequest(urls, defaults.MaxResults)
	req.Filter = defaults.Filter
	req.Sort = comment.SortKey(defaults.Sort)
	req.Descending = defaults.Descending
	return req
}

func (bot *Bot) Comments(args string) (string, error) {
	urls := splitURLs(args)
	if len(urls) == 0 {
		return "", errors.New("nenhum link de vídeo informado")
	}

	req := bot.newRequest(urls)

	bot.runMu.Lock()
	defer bot.runMu.Unlock()

	bot.logger.Info("Starting run", "request_id", req.ID.String(), "urls", len(urls))
	result, err := bot.runner.Run(context.Background(), req)
	if err != nil {
		return "", fmt.Errorf("falha na análise: %w", err)
	}

	return result.Markdown(), nil
}

func (bot *Bot) Stats(args string) (string, error) {
	if bot.store == nil {
		return "", errors.New("a exportação para SQLite está desativada")
	}

	videoID := strings.TrimSpace(args)
	polarities, err := bot.store.Polarities(context.Background(), videoID)
	if err != nil {
		return "", fmt.Errorf("não foi possível ler o banco de dados: %w", err)
	}

	var response strings.Builder
	if videoID != "" {
		response.WriteString(fmt.Sprintf("*Vídeo:* `%s`\n", videoID))
	} else {
		response.WriteString("*Todos os vídeos*\n")
	}
	response.WriteString(report.Summarize(polarities).Markdown())

	return response.String(), nil
}

func (bot *Bot) Files(args string) (string, error) {
	files := bot.conf.Export.Files()
	if len(files) == 0 {
		return "Nenhum arquivo exportado ainda.", nil
	}

	var response strings.Builder
	response.WriteString("*Arquivos exportados:*\n")
	for _, file := range files {
		response.WriteString(fmt.Sprintf("- `%s`\n", file))
	}

	return response.String(), nil
}

// updateConfig applies change under the config lock and persists the file
func (bot *Bot) updateConfig(change func() error) error {
	bot.confMu.Lock()
	defer bot.confMu.Unlock()

	if err := change(); err != nil {
		return err
	}

	if err := bot.conf.Update(); err != nil {
		bot.logger.Warn("Failed to save configuration", "error", err)
	}

	return nil
}

func (bot *Bot) SetMaxResults(args string) (string, error) {
	if args == "" {
		return "", errors.New("valor não informado")
	}

	maxResults, err := strconv.Atoi(args)
	if err != nil || maxResults <= 0 {
		return "", errors.New("valor inválido, informe um número > 0")
	}

	bot.updateConfig(func() error {
		bot.conf.Defaults.MaxResults = maxResults
		return nil
	})

	return fmt.Sprintf("Máximo de comentários por vídeo alterado para %d.", maxResults), nil
}

func (bot *Bot) SetMinLikes(args string) (string, error) {
	if args == "" {
		return "", errors.New("valor não informado")
	}

	minLikes, err := strconv.ParseInt(args, 10, 64)
	if err != nil || minLikes < 0 {
		return "", errors.New("valor inválido, informe um número >= 0")
	}

	bot.updateConfig(func() error {
		bot.conf.Defaults.Filter.MinLikes = minLikes
		return nil
	})

	return fmt.Sprintf("Mínimo de curtidas alterado para %d.", minLikes), nil
}

func (bot *Bot) SetPolarityRange(args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", errors.New("informe o mínimo e o máximo, por exemplo: setpolarity -1 0")
	}

	minPolarity, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", fmt.Errorf("mínimo inválido: %s", parts[0])
	}
	maxPolarity, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", fmt.Errorf("máximo inválido: %s", parts[1])
	}
	if minPolarity < -1 || maxPolarity > 1 || minPolarity > maxPolarity {
		return "", errors.New("o intervalo deve satisfazer -1 <= mínimo <= máximo <= 1")
	}

	bot.updateConfig(func() error {
		bot.conf.Defaults.Filter.MinPolarity = minPolarity
		bot.conf.Defaults.Filter.MaxPolarity = maxPolarity
		return nil
	})

	return fmt.Sprintf("Intervalo de polaridade alterado para [%v, %v].", minPolarity, maxPolarity), nil
}

func (bot *Bot) SetSort(args string) (string, error) {
	parts := strings.Fields(strings.ToLower(args))
	if len(parts) == 0 {
		return "", errors.New("informe a ordenação: likes, date, polarity ou none")
	}

	keyName := parts[0]
	if keyName == "none" {
		keyName = ""
	}
	key, err := comment.ParseSortKey(keyName)
	if err != nil {
		return "", err
	}

	descending := true
	if len(parts) > 1 {
		switch parts[1] {
		case "asc":
			descending = false
		case "desc":
		default:
			return "", fmt.Errorf("direção desconhecida %q, use asc ou desc", parts[1])
		}
	}

	bot.updateConfig(func() error {
		bot.conf.Defaults.Sort = string(key)
		bot.conf.Defaults.Descending = descending
		return nil
	})

	if key == comment.SortNone {
		return "Os comentários ficarão na ordem de busca.", nil
	}

	direction := "decrescente"
	if !descending {
		direction = "crescente"
	}
	return fmt.Sprintf("Ordenação alterada para %s (%s).", key, direction), nil
}

func (bot *Bot) PrintConfig(args string) (string, error) {
	bot.confMu.Lock()
	defer bot.confMu.Unlock()

	var response strings.Builder

	response.WriteString("*Configuração atual*: \n")
	response.WriteString("\n*[ANÁLISE]*\n")
	response.WriteString(fmt.Sprintf("*Máximo de comentários por vídeo*: `%v`\n", bot.conf.Defaults.MaxResults))
	response.WriteString(fmt.Sprintf("*Mínimo de curtidas*: `%v`\n", bot.conf.Defaults.Filter.MinLikes))
	response.WriteString(fmt.Sprintf("*Polaridade*: `[%v, %v]`\n", bot.conf.Defaults.Filter.MinPolarity, bot.conf.Defaults.Filter.MaxPolarity))
	sortKey := bot.conf.Defaults.Sort
	if sortKey == "" {
		sortKey = "none"
	}
	response.WriteString(fmt.Sprintf("*Ordenação*: `%v` (decrescente: `%v`)\n", sortKey, bot.conf.Defaults.Descending))

	response.WriteString("\n*[CLASSIFICADOR]*:\n")
	response.WriteString(fmt.Sprintf("*Backend*: `%v`\n", bot.conf.Classifier.Backend))
	if bot.ollama != nil {
		response.WriteString(fmt.Sprintf("*Modelo*: `%v`\n", bot.ollama.ModelName))
		response.WriteString(fmt.Sprintf("*Tempo limite*: `%v` segundos\n", bot.ollama.TimeoutSeconds))
	} else {
		response.WriteString(fmt.Sprintf("*Modelo*: `%v`\n", bot.conf.Classifier.Hugot.Model))
	}

	response.WriteString("\n*[EXPORTAÇÃO]*:\n")
	response.WriteString(fmt.Sprintf("*Diretório*: `%v`\n", bot.conf.Export.Dir))
	response.WriteString(fmt.Sprintf("*CSV*: `%v`; *JSON*: `%v`; *SQLite*: `%v`; *XLSX*: `%v`\n",
		bot.conf.Export.CSV, bot.conf.Export.JSON, bot.conf.Export.SQLite, bot.conf.Export.XLSX))
	response.WriteString(fmt.Sprintf("*Google Sheets*: `%v`\n", bot.conf.Sheets.Enabled))

	response.WriteString("\n*[TELEGRAM]*:\n")
	response.WriteString(fmt.Sprintf("*Público?*: `%v`\n", bot.conf.Telegram.Public))
	response.WriteString(fmt.Sprintf("*Usuários permitidos*: `%+v`\n", bot.conf.Telegram.AllowedUserIDs))

	return response.String(), nil
}

func (bot *Bot) AddUser(args string) (string, error) {
	if args == "" {
		return "", errors.New("ID do usuário não informado")
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "", errors.New("ID de usuário inválido")
	}

	alreadyAllowed := false
	bot.updateConfig(func() error {
		for _, allowedID := range bot.conf.Telegram.AllowedUserIDs {
			if id == allowedID {
				alreadyAllowed = true
				return nil
			}
		}
		bot.conf.Telegram.AllowedUserIDs = append(bot.conf.Telegram.AllowedUserIDs, id)
		return nil
	})

	if alreadyAllowed {
		return "Este usuário já está na lista de permitidos.", nil
	}
	return "Usuário adicionado com sucesso.", nil
}

func (bot *Bot) RemoveUser(args string) (string, error) {
	if args == "" {
		return "", errors.New("ID do usuário não informado")
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return "", errors.New("ID de usuário inválido")
	}

	err = bot.updateConfig(func() error {
		found := false
		newAllowedUserIDs := []int64{}
		for _, allowedID := range bot.conf.Telegram.AllowedUserIDs {
			if allowedID == id {
				found = true
				continue
			}
			newAllowedUserIDs = append(newAllowedUserIDs, allowedID)
		}

		if !found {
			return errors.New("usuário não encontrado na lista de permitidos")
		}

		bot.conf.Telegram.AllowedUserIDs = newAllowedUserIDs
		return nil
	})
	if err != nil {
		return "", err
	}

	return "Usuário removido com sucesso!", nil
}

func (bot *Bot) TogglePublicity(args string) (string, error) {
	public := false
	bot.updateConfig(func() error {
		bot.conf.Telegram.Public = !bot.conf.Telegram.Public
		public = bot.conf.Telegram.Public
		return nil
	})

	if public {
		return "Agora qualquer pessoa pode usar o bot.", nil
	}
	return "Agora apenas usuários permitidos podem usar o bot.", nil
}
