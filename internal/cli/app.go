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

package cli

import (
	"Unbewohnte/YTCS/internal/config"
	"Unbewohnte/YTCS/internal/db"
	"Unbewohnte/YTCS/internal/export"
	"Unbewohnte/YTCS/internal/inference"
	"Unbewohnte/YTCS/internal/logging"
	"Unbewohnte/YTCS/internal/pipeline"
	"Unbewohnte/YTCS/internal/youtube"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
)

// ConfigCreatedError is returned on first start, after a default config has
// been written for the user to fill in
type ConfigCreatedError struct {
	Path string
}

func (e *ConfigCreatedError) Error() string {
	return fmt.Sprintf("no configuration found, created a default one at %s", e.Path)
}

type app struct {
	conf    *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// services is everything a run needs. database and ollama are nil when the
// matching feature is off.
type services struct {
	pipeline *pipeline.Pipeline
	database *db.DB
	ollama   *inference.OllamaRater
}

func loadConfig(path string) (*config.Config, error) {
	conf, err := config.ConfigFrom(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		return nil, &ConfigCreatedError{Path: path}
	}

	if err := conf.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := conf.LoadCredentials(); err != nil {
		return nil, err
	}

	return conf, nil
}

func loadApp(cmd *cobra.Command) (*app, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("getting config flag value: %w", err)
	}

	conf, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}

	closer, err := logging.Init(logging.Options{Debug: conf.Debug, LogsFile: conf.LogsFile})
	if err != nil {
		return nil, fmt.Errorf("opening logs file: %w", err)
	}

	return &app{
		conf:    conf,
		logger:  slog.Default(),
		closers: []io.Closer{closer},
	}, nil
}

func (a *app) Close() {
	// Reverse order, the logs file goes last
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("Failed to close resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) classifier() (*inference.Classifier, *inference.OllamaRater, error) {
	conf := a.conf.Classifier

	switch conf.Backend {
	case config.BackendOllama:
		rater, err := inference.NewOllamaRater(conf.Ollama.Model, conf.Ollama.Prompt, conf.Ollama.QueryTimeoutSeconds)
		if err != nil {
			return nil, nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return inference.NewClassifier(rater, a.logger), rater, nil
	default:
		rater, err := inference.NewHugotRater(conf.Hugot.Model, conf.Hugot.ModelDir, conf.Hugot.ModelPath, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("loading sentiment model: %w", err)
		}
		a.closers = append(a.closers, rater)
		return inference.NewClassifier(rater, a.logger), nil, nil
	}
}

// openDatabase opens the SQLite export target on its own, for commands that
// only read or import
func (a *app) openDatabase() (*db.DB, error) {
	exportConf := a.conf.Export
	if !exportConf.SQLite {
		return nil, errors.New("SQLite export is disabled in the config")
	}

	database, err := db.NewDB(exportConf.Path(exportConf.SQLiteFile))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database)

	return database, nil
}

func (a *app) services(ctx context.Context) (*services, error) {
	classifier, ollama, err := a.classifier()
	if err != nil {
		return nil, err
	}

	source, err := youtube.NewAPISource(ctx, a.conf.YouTube)
	if err != nil {
		return nil, err
	}
	fetcher := youtube.NewFetcher(source, classifier, a.conf.YouTube.PageSize, a.logger)

	writers, database, err := export.Targets(a.conf.Export)
	if err != nil {
		return nil, err
	}
	if database != nil {
		a.closers = append(a.closers, database)
	}

	if a.conf.Sheets.Enabled {
		sheetsWriter, err := export.NewSheetsWriter(ctx, a.conf.Sheets)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sheetsWriter)
	}

	return &services{
		pipeline: pipeline.New(fetcher, writers, a.logger),
		database: database,
		ollama:   ollama,
	}, nil
}
