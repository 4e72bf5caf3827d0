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

// Package tick parses futures tick data CSV files, the per-day exports that
// exchanges distribute in yearly archives, into rows ready for bulk loading.
package tick

// Columns lists the tick store columns in wire order. CSV cells map onto
// them positionally, the order the exchange exports them in.
var Columns = []string{
	"market_code",
	"contract_code",
	"tick_time",
	"last_price",
	"open_interest",
	"oi_change",
	"turnover",
	"volume",
	"open_volume",
	"close_volume",
	"trade_type",
	"direction",
	"bid_price",
	"ask_price",
	"bid_volume",
	"ask_volume",
}

// Record is a single tick row. Cells are kept verbatim as exported so that
// the database, not the importer, decides what parses. Empty cells become
// SQL NULL when copied.
type Record struct {
	MarketCode   string
	ContractCode string
	TickTime     string
	LastPrice    string
	OpenInterest string
	OIChange     string
	Turnover     string
	Volume       string
	OpenVolume   string
	CloseVolume  string
	TradeType    string
	Direction    string
	BidPrice     string
	AskPrice     string
	BidVolume    string
	AskVolume    string
}

func (r Record) cells() []string {
	return []string{
		r.MarketCode,
		r.ContractCode,
		r.TickTime,
		r.LastPrice,
		r.OpenInterest,
		r.OIChange,
		r.Turnover,
		r.Volume,
		r.OpenVolume,
		r.CloseVolume,
		r.TradeType,
		r.Direction,
		r.BidPrice,
		r.AskPrice,
		r.BidVolume,
		r.AskVolume,
	}
}

// Values returns the record's cells in Columns order, with empty cells as
// nil so the driver writes SQL NULL.
func (r Record) Values() []interface{} {
	cells := r.cells()
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		values[i] = cell
	}
	return values
}

func fromCells(cells []string) Record {
	return Record{
		MarketCode:   cells[0],
		ContractCode: cells[1],
		TickTime:     cells[2],
		LastPrice:    cells[3],
		OpenInterest: cells[4],
		OIChange:     cells[5],
		Turnover:     cells[6],
		Volume:       cells[7],
		OpenVolume:   cells[8],
		CloseVolume:  cells[9],
		TradeType:    cells[10],
		Direction:    cells[11],
		BidPrice:     cells[12],
		AskPrice:     cells[13],
		BidVolume:    cells[14],
		AskVolume:    cells[15],
	}
}
