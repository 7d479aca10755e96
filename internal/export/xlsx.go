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
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/tealeg/xlsx/v3"
)

const SheetName = "comentarios"

type XLSXWriter struct {
	Path string
}

func (w *XLSXWriter) Name() string {
	return w.Path
}

func (w *XLSXWriter) Write(_ context.Context, records []comment.Record) error {
	if err := ensureDir(w.Path); err != nil {
		return err
	}

	buf, err := GenerateXLSX(records)
	if err != nil {
		return err
	}

	return os.WriteFile(w.Path, buf.Bytes(), 0644)
}

// GenerateXLSX builds a workbook in memory with a header row and one typed
// row per record
func GenerateXLSX(records []comment.Record) (*bytes.Buffer, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return nil, err
	}

	headerRow := sheet.AddRow()
	for _, column := range comment.Columns {
		cell := headerRow.AddCell()
		cell.Value = column
	}

	for _, record := range records {
		row := sheet.AddRow()

		cell := row.AddCell()
		cell.Value = record.VideoID

		cell = row.AddCell()
		cell.Value = record.Author

		cell = row.AddCell()
		cell.Value = record.Text

		cell = row.AddCell()
		cell.SetInt64(record.LikeCount)

		cell = row.AddCell()
		cell.SetFloat(record.Polarity)

		cell = row.AddCell()
		cell.Value = record.PublishedAt
	}

	buf := new(bytes.Buffer)
	if err := file.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func ReadXLSX(path string) ([]comment.Record, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if len(file.Sheets) == 0 {
		return []comment.Record{}, nil
	}

	records := []comment.Record{}
	rowNumber := 0
	err = file.Sheets[0].ForEachRow(func(row *xlsx.Row) error {
		rowNumber++
		if rowNumber == 1 {
			// Header
			return nil
		}

		values := make([]string, len(comment.Columns))
		for i := range values {
			values[i] = row.GetCell(i).Value
		}

		record, err := comment.FromRow(values)
		if err != nil {
			return fmt.Errorf("row %d: %w", rowNumber, err)
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
