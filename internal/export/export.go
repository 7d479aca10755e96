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

package export

import (
	"Unbewohnte/YTCS/internal/comment"
	"Unbewohnte/YTCS/internal/db"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Writer persists a batch of records somewhere
type Writer interface {
	Name() string
	Write(ctx context.Context, records []comment.Record) error
}

type Config struct {
	Dir        string `json:"dir"`
	CSV        bool   `json:"csv"`
	CSVFile    string `json:"csv_file"`
	JSON       bool   `json:"json"`
	JSONFile   string `json:"json_file"`
	SQLite     bool   `json:"sqlite"`
	SQLiteFile string `json:"sqlite_file"`
	XLSX       bool   `json:"xlsx"`
	XLSXFile   string `json:"xlsx_file"`
}

func DefaultConfig() Config {
	return Config{
		Dir:        "novo",
		CSV:        true,
		CSVFile:    "comentarios.csv",
		JSON:       true,
		JSONFile:   "comentarios.json",
		SQLite:     true,
		SQLiteFile: "comentarios.db",
		XLSX:       false,
		XLSXFile:   "comentarios.xlsx",
	}
}

func (c Config) Path(file string) string {
	return filepath.Join(c.Dir, file)
}

// Files lists paths of the enabled file exports that currently exist
func (c Config) Files() []string {
	var files []string
	for _, candidate := range []struct {
		enabled bool
		file    string
	}{
		{c.CSV, c.CSVFile},
		{c.JSON, c.JSONFile},
		{c.SQLite, c.SQLiteFile},
		{c.XLSX, c.XLSXFile},
	} {
		if !candidate.enabled {
			continue
		}

		path := c.Path(candidate.file)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}

	return files
}

// Targets opens every enabled writer. The returned database is nil when
// SQLite export is disabled; the caller owns closing it.
func Targets(conf Config) ([]Writer, *db.DB, error) {
	var writers []Writer
	if conf.CSV {
		writers = append(writers, &CSVWriter{Path: conf.Path(conf.CSVFile)})
	}
	if conf.JSON {
		writers = append(writers, &JSONWriter{Path: conf.Path(conf.JSONFile)})
	}
	if conf.XLSX {
		writers = append(writers, &XLSXWriter{Path: conf.Path(conf.XLSXFile)})
	}

	var database *db.DB
	if conf.SQLite {
		var err error
		database, err = db.NewDB(conf.Path(conf.SQLiteFile))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		writers = append(writers, database)
	}

	return writers, database, nil
}

// ReadFile loads records from a previous CSV, JSON or XLSX export
func ReadFile(path string) ([]comment.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".json":
		return ReadJSON(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), os.ModePerm)
}
