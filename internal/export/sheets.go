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
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SheetsConfig struct {
	Enabled         bool   `json:"enabled"`
	CredentialsFile string `json:"credentials_file"`
	CredentialsJSON []byte `json:"-"`
	SpreadsheetID   string `json:"spreadsheet_id"`
	SheetName       string `json:"sheet_name"`
	MaxRetries      int    `json:"max_retries"`
}

// SheetsWriter appends records to a Google spreadsheet in one batch request
type SheetsWriter struct {
	service       *sheets.Service
	SpreadsheetID string
	SheetName     string
	MaxRetries    int
	retryDelay    time.Duration
}

func NewSheetsWriter(ctx context.Context, conf SheetsConfig) (*SheetsWriter, error) {
	// Service account
	jwtConfig, err := google.JWTConfigFromJSON(
		conf.CredentialsJSON,
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Sheets service: %w", err)
	}

	return newSheetsWriter(srv, conf), nil
}

func newSheetsWriter(srv *sheets.Service, conf SheetsConfig) *SheetsWriter {
	return &SheetsWriter{
		service:       srv,
		SpreadsheetID: conf.SpreadsheetID,
		SheetName:     conf.SheetName,
		MaxRetries:    max(conf.MaxRetries, 1),
		retryDelay:    time.Second,
	}
}

func (w *SheetsWriter) Name() string {
	return fmt.Sprintf("sheets:%s/%s", w.SpreadsheetID, w.SheetName)
}

func sheetRow(record comment.Record) []interface{} {
	return []interface{}{
		record.VideoID,
		record.Author,
		record.Text,
		record.LikeCount,
		record.Polarity,
		record.PublishedAt,
	}
}

func (w *SheetsWriter) appendRows(ctx context.Context, records []comment.Record) error {
	var vr sheets.ValueRange
	for _, record := range records {
		vr.Values = append(vr.Values, sheetRow(record))
	}

	_, err := w.service.Spreadsheets.Values.Append(
		w.SpreadsheetID,
		w.SheetName+"!A:F",
		&vr,
	).ValueInputOption("RAW").Context(ctx).Do()

	return err
}

// Write retries the append with a linearly growing pause between attempts
func (w *SheetsWriter) Write(ctx context.Context, records []comment.Record) error {
	var lastErr error
	for i := 0; i < w.MaxRetries; i++ {
		if lastErr = w.appendRows(ctx, records); lastErr == nil {
			return nil
		}

		if i == w.MaxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retryDelay * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to append rows after %d attempts: %w", w.MaxRetries, lastErr)
}
