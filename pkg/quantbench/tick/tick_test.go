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
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/quantbench/quantbench/testutil"
)

const chineseHeader = "市场代码,合约代码,时间,最新,持仓,增仓,成交额,成交量,开仓,平仓,成交类型,方向,买一价,卖一价,买一量,卖一量"

var sampleRecord = Record{
	MarketCode:   "SHFE",
	ContractCode: "cu1106",
	TickTime:     "2011-01-04 09:00:00.5",
	LastPrice:    "71280",
	OpenInterest: "303174",
	OIChange:     "170",
	Turnover:     "3567500000",
	Volume:       "1002",
	OpenVolume:   "556",
	CloseVolume:  "318",
	TradeType:    "双开",
	Direction:    "B",
	BidPrice:     "71270",
	AskPrice:     "71280",
	BidVolume:    "9",
	AskVolume:    "14",
}

const sampleRow = "SHFE,cu1106,2011-01-04 09:00:00.5,71280,303174,170,3567500000,1002,556,318,双开,B,71270,71280,9,14"

func TestParse(t *testing.T) {
	tests := []struct {
		description string
		csv         string
		encoding    Encoding
		shouldErr   bool
		expected    []Record
	}{
		{
			description: "chinese header is skipped",
			csv:         chineseHeader + "\n" + sampleRow + "\n",
			encoding:    EncodingAuto,
			expected:    []Record{sampleRecord},
		},
		{
			description: "english header is skipped",
			csv:         strings.Join(Columns, ",") + "\n" + sampleRow + "\n",
			encoding:    EncodingAuto,
			expected:    []Record{sampleRecord},
		},
		{
			description: "headerless files keep their first row",
			csv:         sampleRow + "\n" + sampleRow + "\n",
			encoding:    EncodingAuto,
			expected:    []Record{sampleRecord, sampleRecord},
		},
		{
			description: "empty cells stay empty",
			csv:         "SHFE,cu1106,2011-01-04 09:00:00.5,71280,,,,,,,,,,,,\n",
			encoding:    EncodingAuto,
			expected: []Record{{
				MarketCode:   "SHFE",
				ContractCode: "cu1106",
				TickTime:     "2011-01-04 09:00:00.5",
				LastPrice:    "71280",
			}},
		},
		{
			description: "header only",
			csv:         chineseHeader + "\n",
			encoding:    EncodingAuto,
		},
		{
			description: "ragged row",
			csv:         "SHFE,cu1106,2011-01-04\n",
			encoding:    EncodingAuto,
			shouldErr:   true,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			records, err := Parse(strings.NewReader(test.csv), test.encoding)

			t.CheckErrorAndDeepEqual(test.shouldErr, err, test.expected, records)
		})
	}
}

func TestParseGBK(t *testing.T) {
	testutil.Run(t, "explicit gbk", func(t *testutil.T) {
		records, err := Parse(bytes.NewReader(gbkBytes(t, chineseHeader+"\n"+sampleRow+"\n")), EncodingGBK)

		t.CheckNoError(err)
		t.CheckDeepEqual([]Record{sampleRecord}, records)
	})

	testutil.Run(t, "auto falls back to gbk when bytes aren't utf-8", func(t *testutil.T) {
		records, err := Parse(bytes.NewReader(gbkBytes(t, chineseHeader+"\n"+sampleRow+"\n")), EncodingAuto)

		t.CheckNoError(err)
		t.CheckDeepEqual([]Record{sampleRecord}, records)
	})

	testutil.Run(t, "utf-8 passes gbk bytes through undecoded", func(t *testutil.T) {
		records, err := Parse(bytes.NewReader(gbkBytes(t, sampleRow+"\n")), EncodingUTF8)

		t.CheckNoError(err)
		t.CheckDeepEqual(1, len(records))
		t.CheckFalse(records[0].TradeType == sampleRecord.TradeType)
	})
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		value     string
		expected  Encoding
		shouldErr bool
	}{
		{value: "", expected: EncodingAuto},
		{value: "auto", expected: EncodingAuto},
		{value: "AUTO", expected: EncodingAuto},
		{value: "utf-8", expected: EncodingUTF8},
		{value: "utf8", expected: EncodingUTF8},
		{value: "GBK", expected: EncodingGBK},
		{value: "latin-1", shouldErr: true},
	}
	for _, test := range tests {
		testutil.Run(t, test.value, func(t *testutil.T) {
			encoding, err := ParseEncoding(test.value)

			t.CheckErrorAndDeepEqual(test.shouldErr, err, test.expected, encoding)
		})
	}
}

func TestParseFile(t *testing.T) {
	testutil.Run(t, "plain csv", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Write("20110104.csv", chineseHeader+"\n"+sampleRow+"\n")

		records, err := ParseFile(tmpDir.Path("20110104.csv"), EncodingAuto)

		t.CheckNoError(err)
		t.CheckDeepEqual([]Record{sampleRecord}, records)
	})

	testutil.Run(t, "gzipped csv", func(t *testutil.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write([]byte(sampleRow + "\n")); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		tmpDir := t.NewTempDir().WriteBytes("20110104.csv.gz", buf.Bytes())

		records, err := ParseFile(tmpDir.Path("20110104.csv.gz"), EncodingAuto)

		t.CheckNoError(err)
		t.CheckDeepEqual([]Record{sampleRecord}, records)
	})

	testutil.Run(t, "not gzipped", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Write("20110104.csv.gz", sampleRow+"\n")

		_, err := ParseFile(tmpDir.Path("20110104.csv.gz"), EncodingAuto)

		t.CheckErrorContains("gunzipping", err)
	})

	testutil.Run(t, "missing file", func(t *testutil.T) {
		_, err := ParseFile("does-not-exist.csv", EncodingAuto)

		t.CheckErrorContains("opening tick file", err)
	})
}

func TestValues(t *testing.T) {
	testutil.Run(t, "empty cells become nil", func(t *testutil.T) {
		values := Record{MarketCode: "SHFE", LastPrice: "71280"}.Values()

		t.CheckDeepEqual(len(Columns), len(values))
		t.CheckDeepEqual("SHFE", values[0].(string))
		t.CheckNil(values[1])
		t.CheckDeepEqual("71280", values[3].(string))
	})

	testutil.Run(t, "cells follow column order", func(t *testutil.T) {
		values := sampleRecord.Values()

		t.CheckDeepEqual("cu1106", values[1].(string))
		t.CheckDeepEqual("14", values[len(values)-1].(string))
	})
}

func gbkBytes(t *testutil.T, s string) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(s))
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return encoded
}
