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
	"encoding/json"
	"io"
	"os"
)

// JSONWriter overwrites Path with an indented array of records
type JSONWriter struct {
	Path string
}

func (w *JSONWriter) Name() string {
	return w.Path
}

func (w *JSONWriter) Write(_ context.Context, records []comment.Record) error {
	if err := ensureDir(w.Path); err != nil {
		return err
	}

	file, err := os.Create(w.Path)
	if err != nil {
		return err
	}

	if err := WriteJSON(file, records); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

// WriteJSON keeps non-ASCII text and <, >, & as is
func WriteJSON(out io.Writer, records []comment.Record) error {
	if records == nil {
		records = []comment.Record{}
	}

	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	return encoder.Encode(records)
}

func ReadJSON(path string) ([]comment.Record, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []comment.Record
	if err := json.Unmarshal(contents, &records); err != nil {
		return nil, err
	}

	return records, nil
}
