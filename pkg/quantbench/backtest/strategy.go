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

package backtest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed strategy-schema.json
var strategySchemaJSON []byte

// DefaultStrategyName matches the class name earlier engines required
// generated strategies to carry.
const DefaultStrategyName = "GeneratedStrategy"

// Strategy is a declarative strategy document: indicators computed over the
// feed and rules that place orders when their condition holds.
type Strategy struct {
	Name       string             `json:"name,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
	Indicators []IndicatorSpec    `json:"indicators,omitempty"`
	Rules      []Rule             `json:"rules"`
	Log        bool               `json:"log,omitempty"`
}

type IndicatorSpec struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
	Period int    `json:"period"`
}

type Rule struct {
	When Condition `json:"when"`
	Do   Action    `json:"do"`
}

// Condition holds exactly one comparison or combinator, enforced by the
// document schema.
type Condition struct {
	Crossover  []Operand   `json:"crossover,omitempty"`
	Crossunder []Operand   `json:"crossunder,omitempty"`
	GT         []Operand   `json:"gt,omitempty"`
	LT         []Operand   `json:"lt,omitempty"`
	GE         []Operand   `json:"ge,omitempty"`
	LE         []Operand   `json:"le,omitempty"`
	And        []Condition `json:"and,omitempty"`
	Or         []Condition `json:"or,omitempty"`
	Not        *Condition  `json:"not,omitempty"`
}

type Action struct {
	Action string  `json:"action"`
	Size   float64 `json:"size,omitempty"`
}

// Operand is either a number literal or a reference to a price field,
// indicator id or parameter.
type Operand struct {
	Ref     string
	Literal float64
	IsRef   bool
}

func (o *Operand) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		o.IsRef = true
		return json.Unmarshal(data, &o.Ref)
	}
	return json.Unmarshal(data, &o.Literal)
}

func (o Operand) MarshalJSON() ([]byte, error) {
	if o.IsRef {
		return json.Marshal(o.Ref)
	}
	return json.Marshal(o.Literal)
}

// ParseStrategy validates doc against the strategy document schema and
// unmarshals it, applying defaults for name and indicator source.
func ParseStrategy(doc []byte) (*Strategy, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(strategySchemaJSON), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, resultError := range result.Errors() {
			reasons = append(reasons, fmt.Sprintf("%s: %s", resultError.Field(), resultError.Description()))
		}
		return nil, fmt.Errorf("invalid strategy document: %s", strings.Join(reasons, "; "))
	}

	strategy := &Strategy{}
	if err := json.Unmarshal(doc, strategy); err != nil {
		return nil, fmt.Errorf("unmarshalling document: %w", err)
	}
	if strategy.Name == "" {
		strategy.Name = DefaultStrategyName
	}
	for i := range strategy.Indicators {
		if strategy.Indicators[i].Source == "" {
			strategy.Indicators[i].Source = "close"
		}
	}
	return strategy, nil
}
