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

package config

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/export"
	"Unbewohnte/YTCS/internal/inference"
	"Unbewohnte/YTCS/internal/youtube"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/subosito/gotenv"
)

var ErrUnknownConfigPath = errors.New("unknown configuration file path")

const (
	BackendHugot  = "hugot"
	BackendOllama = "ollama"
)

// Environment variables overriding secrets from the file
const (
	EnvYouTubeAPIKey = "YTCS_YOUTUBE_API_KEY"
	EnvTelegramToken = "YTCS_TELEGRAM_TOKEN"
	EnvWebPassword   = "YTCS_WEB_PASSWORD"
	EnvJWTSecret     = "YTCS_JWT_SECRET"
)

type HugotConf struct {
	Model     string `json:"model"`
	ModelDir  string `json:"model_dir"`
	ModelPath string `json:"model_path"`
}

type OllamaConf struct {
	Model               string `json:"model"`
	QueryTimeoutSeconds uint   `json:"query_timeout_seconds"`
	Prompt              string `json:"prompt"`
}

type ClassifierConf struct {
	Backend string     `json:"backend"`
	Hugot   HugotConf  `json:"hugot"`
	Ollama  OllamaConf `json:"ollama"`
}

type DefaultsConf struct {
	MaxResults int            `json:"max_results"`
	Filter     comment.Filter `json:"filter"`
	Sort       string         `json:"sort"`
	Descending bool           `json:"descending"`
}

type TelegramConf struct {
	ApiToken       string  `json:"api_token"`
	Public         bool    `json:"is_public"`
	AllowedUserIDs []int64 `json:"allowed_user_ids"`
}

type WebConf struct {
	Addr          string `json:"addr"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours uint   `json:"token_ttl_hours"`
}

type Config struct {
	YouTube    youtube.Config      `json:"youtube"`
	Classifier ClassifierConf      `json:"classifier"`
	Defaults   DefaultsConf        `json:"defaults"`
	Export     export.Config       `json:"export"`
	Sheets     export.SheetsConfig `json:"sheets"`
	Telegram   TelegramConf        `json:"telegram"`
	Web        WebConf             `json:"web"`
	LogsFile   string              `json:"logs_file"`
	Debug      bool                `json:"debug"`

	path string
	// File values of secrets replaced from the environment, by variable name
	overridden map[string]string
}

func (conf *Config) secret(env string) *string {
	switch env {
	case EnvYouTubeAPIKey:
		return &conf.YouTube.APIKey
	case EnvTelegramToken:
		return &conf.Telegram.ApiToken
	case EnvWebPassword:
		return &conf.Web.Password
	case EnvJWTSecret:
		return &conf.Web.JWTSecret
	default:
		return nil
	}
}

func DefaultConfig() *Config {
	return &Config{
		YouTube: youtube.Config{
			APIKey:          "youtube_api_key",
			CredentialsFile: "",
			PageSize:        youtube.MaxPageSize,
		},
		Classifier: ClassifierConf{
			Backend: BackendHugot,
			Hugot: HugotConf{
				Model:    inference.DefaultStarModel,
				ModelDir: "models",
			},
			Ollama: OllamaConf{
				Model:               "llama3.1:8b",
				QueryTimeoutSeconds: 60,
				Prompt:              inference.DefaultStarPrompt,
			},
		},
		Defaults: DefaultsConf{
			MaxResults: 100,
			Filter:     comment.DefaultFilter(),
			Sort:       string(comment.SortNone),
			Descending: true,
		},
		Export: export.DefaultConfig(),
		Sheets: export.SheetsConfig{
			Enabled:         false,
			CredentialsFile: "secret.json",
			SpreadsheetID:   "spreadsheet_id",
			SheetName:       "Sheet1",
			MaxRetries:      3,
		},
		Telegram: TelegramConf{
			ApiToken:       "tg_api_token",
			Public:         false,
			AllowedUserIDs: []int64{},
		},
		Web: WebConf{
			Addr:          "127.0.0.1:8080",
			Username:      "admin",
			Password:      "",
			JWTSecret:     "",
			TokenTTLHours: 24,
		},
		LogsFile: "",
		Debug:    false,
	}
}

func (conf *Config) Path() string {
	return conf.path
}

func (conf *Config) Save(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	// Secrets from the environment stay out of the file
	c := *conf
	for env, fileValue := range conf.overridden {
		*c.secret(env) = fileValue
	}

	jsonBytes, err := json.MarshalIndent(&c, "", "\t")
	if err != nil {
		return err
	}

	if _, err = file.Write(jsonBytes); err != nil {
		return err
	}

	conf.path = path
	return nil
}

func ConfigFrom(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	conf := DefaultConfig()
	err = json.Unmarshal(contents, conf)
	if err != nil {
		return nil, err
	}

	conf.path = path

	return conf, nil
}

// Update rewrites the file the configuration was loaded from
func (conf *Config) Update() error {
	if conf.path == "" {
		return ErrUnknownConfigPath
	}

	return conf.Save(conf.path)
}

// ApplyEnv loads the given .env files (missing ones are ignored) and lets
// YTCS_* variables override secrets
func (conf *Config) ApplyEnv(envFiles ...string) error {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := gotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	for _, env := range []string{EnvYouTubeAPIKey, EnvTelegramToken, EnvWebPassword, EnvJWTSecret} {
		value, ok := os.LookupEnv(env)
		if !ok || value == "" {
			continue
		}

		if conf.overridden == nil {
			conf.overridden = make(map[string]string)
		}
		target := conf.secret(env)
		if _, seen := conf.overridden[env]; !seen {
			conf.overridden[env] = *target
		}
		*target = value
	}

	return nil
}

// LoadCredentials reads service account files referenced by the config
func (conf *Config) LoadCredentials() error {
	if conf.YouTube.CredentialsFile != "" {
		contents, err := os.ReadFile(conf.YouTube.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to read YouTube credentials: %w", err)
		}
		conf.YouTube.CredentialsJSON = contents
	}

	if conf.Sheets.Enabled {
		contents, err := os.ReadFile(conf.Sheets.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to read Google Sheets credentials: %w", err)
		}
		conf.Sheets.CredentialsJSON = contents
	}

	return nil
}

func (conf *Config) Validate() error {
	var errs []error

	if conf.Defaults.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("defaults.max_results must be positive, got %d", conf.Defaults.MaxResults))
	}
	if conf.YouTube.PageSize < 1 || conf.YouTube.PageSize > youtube.MaxPageSize {
		errs = append(errs, fmt.Errorf("youtube.page_size must be within 1..%d, got %d", youtube.MaxPageSize, conf.YouTube.PageSize))
	}

	filter := conf.Defaults.Filter
	if filter.MinLikes < 0 {
		errs = append(errs, fmt.Errorf("defaults.filter.min_likes must not be negative"))
	}
	if filter.MinPolarity < -1 || filter.MaxPolarity > 1 || filter.MinPolarity > filter.MaxPolarity {
		errs = append(errs, fmt.Errorf("defaults.filter polarity bounds must satisfy -1 <= min <= max <= 1, got [%v, %v]",
			filter.MinPolarity, filter.MaxPolarity))
	}

	if _, err := comment.ParseSortKey(conf.Defaults.Sort); err != nil {
		errs = append(errs, err)
	}

	switch conf.Classifier.Backend {
	case BackendHugot, BackendOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown classifier backend %q", conf.Classifier.Backend))
	}

	return errors.Join(errs...)
}
