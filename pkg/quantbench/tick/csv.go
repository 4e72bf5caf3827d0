/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tick

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Encoding selects how CSV bytes are decoded.
type Encoding string

const (
	// EncodingAuto reads valid UTF-8 as is and falls back to GBK, the
	// encoding the exchange exports historically shipped with.
	EncodingAuto = Encoding("auto")
	EncodingUTF8 = Encoding("utf-8")
	EncodingGBK  = Encoding("gbk")
)

// ParseEncoding validates a configured encoding name.
func ParseEncoding(value string) (Encoding, error) {
	switch strings.ToLower(value) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "gbk":
		return EncodingGBK, nil
	}
	return "", fmt.Errorf("unknown encoding %q, expected auto, utf-8 or gbk", value)
}

// lastPriceColumn is the cell a header row can't fake: header names aren't
// numbers and data rows carry a price there.
const lastPriceColumn = 3

// ParseFile reads tick records from a CSV file, transparently gunzipping
// `.gz` files.
func ParseFile(path string, encoding Encoding) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tick file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("gunzipping %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	records, err := Parse(r, encoding)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// Parse reads tick records from r. A leading header row, Chinese or an
// English echo of the column names, is skipped.
func Parse(r io.Reader, encoding Encoding) ([]Record, error) {
	decoded, err := decode(r, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = len(Columns)
	reader.TrimLeadingSpace = true

	var records []Record
	for line := 1; ; line++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if line == 1 && isHeaderRow(cells) {
			continue
		}
		records = append(records, fromCells(cells))
	}
	return records, nil
}

func isHeaderRow(cells []string) bool {
	cell := cells[lastPriceColumn]
	if cell == "" {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err != nil
}

func decode(r io.Reader, encoding Encoding) (io.Reader, error) {
	switch encoding {
	case EncodingUTF8:
		return r, nil
	case EncodingGBK:
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tick data: %w", err)
	}
	if utf8.Valid(data) {
		return bytes.NewReader(data), nil
	}
	return transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder()), nil
}
