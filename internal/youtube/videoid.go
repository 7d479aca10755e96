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

package youtube

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidVideoURL = errors.New("invalid video URL")

// ExtractVideoID takes the value of the v= marker up to the next '&'
func ExtractVideoID(url string) (string, error) {
	url = strings.TrimSpace(url)

	_, after, found := strings.Cut(url, "v=")
	if !found {
		return "", fmt.Errorf("%w: %q has no v= parameter", ErrInvalidVideoURL, url)
	}

	id, _, _ := strings.Cut(after, "&")
	if id == "" {
		return "", fmt.Errorf("%w: %q has an empty video id", ErrInvalidVideoURL, url)
	}

	return id, nil
}
