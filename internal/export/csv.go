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
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVWriter overwrites Path with a header row followed by one row per record
type CSVWriter struct {
	Path string
}

func (w *CSVWriter) Name() string {
	return w.Path
}

func (w *CSVWriter) Write(_ context.Context, records []comment.Record) error {
	if err := ensureDir(w.Path); err != nil {
		return err
	}

	file, err := os.Create(w.Path)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, records); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func WriteCSV(out io.Writer, records []comment.Record) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(comment.Columns); err != nil {
		return err
	}

	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func ReadCSV(path string) ([]comment.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []comment.Record{}, nil
	}

	records := make([]comment.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := comment.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}
