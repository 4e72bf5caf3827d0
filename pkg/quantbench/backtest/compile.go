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
	"errors"
	"fmt"
	"math"
)

// valueFunc returns an operand's value on bar i.
type valueFunc func(i int) float64

// conditionFunc reports whether a rule condition holds on bar i.
type conditionFunc func(i int) bool

// compiled is a strategy bound to a candle series, ready for bar by bar
// evaluation. warmup is the first index where every indicator has a value.
type compiled struct {
	rules  []compiledRule
	warmup int
}

type compiledRule struct {
	when conditionFunc
	do   Action
}

func (r compiledRule) order() order {
	switch r.do.Action {
	case "buy":
		return order{kind: orderBuy, size: r.do.Size}
	case "sell":
		return order{kind: orderSell, size: r.do.Size}
	default:
		return order{kind: orderClose}
	}
}

type compiler struct {
	strategy *Strategy
	fields   map[string]valueFunc
	series   map[string][]float64
}

// compile resolves the strategy's indicators and rule operands against the
// candle series. Unknown references and empty rules are compile errors.
func compile(strategy *Strategy, candles []Candle) (*compiled, error) {
	if len(strategy.Rules) == 0 {
		return nil, errors.New("strategy has no rules")
	}

	c := &compiler{
		strategy: strategy,
		fields: map[string]valueFunc{
			"open":   func(i int) float64 { return candles[i].Open },
			"high":   func(i int) float64 { return candles[i].High },
			"low":    func(i int) float64 { return candles[i].Low },
			"close":  func(i int) float64 { return candles[i].Close },
			"volume": func(i int) float64 { return candles[i].Volume },
		},
		series: map[string][]float64{},
	}

	warmup := 0
	for _, spec := range strategy.Indicators {
		if _, ok := c.fields[spec.ID]; ok {
			return nil, fmt.Errorf("indicator id %q shadows a price field", spec.ID)
		}
		if _, ok := c.series[spec.ID]; ok {
			return nil, fmt.Errorf("duplicate indicator id %q", spec.ID)
		}

		source, ok := c.fields[spec.Source]
		if !ok {
			return nil, fmt.Errorf("indicator %q has unknown source %q", spec.ID, spec.Source)
		}
		values := make([]float64, len(candles))
		for i := range candles {
			values[i] = source(i)
		}

		switch spec.Type {
		case "sma":
			values = SMA(values, spec.Period)
		case "ema":
			values = EMA(values, spec.Period)
		case "rsi":
			values = RSI(values, spec.Period)
		default:
			return nil, fmt.Errorf("unknown indicator type %q", spec.Type)
		}
		c.series[spec.ID] = values

		if w := firstValid(values); w > warmup {
			warmup = w
		}
	}

	rules := make([]compiledRule, len(strategy.Rules))
	for i, rule := range strategy.Rules {
		when, err := c.condition(rule.When)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}

		do := rule.Do
		switch do.Action {
		case "buy", "sell":
			if do.Size <= 0 {
				do.Size = 1
			}
		case "close":
		default:
			return nil, fmt.Errorf("rule %d: unknown action %q", i+1, do.Action)
		}
		rules[i] = compiledRule{when: when, do: do}
	}

	return &compiled{rules: rules, warmup: warmup}, nil
}

func (c *compiler) condition(cond Condition) (conditionFunc, error) {
	switch {
	case cond.Crossover != nil:
		a, b, err := c.pair(cond.Crossover)
		if err != nil {
			return nil, err
		}
		return func(i int) bool { return crossedOver(a, b, i) }, nil
	case cond.Crossunder != nil:
		a, b, err := c.pair(cond.Crossunder)
		if err != nil {
			return nil, err
		}
		return func(i int) bool { return crossedOver(b, a, i) }, nil
	case cond.GT != nil:
		return c.compare(cond.GT, func(a, b float64) bool { return a > b })
	case cond.LT != nil:
		return c.compare(cond.LT, func(a, b float64) bool { return a < b })
	case cond.GE != nil:
		return c.compare(cond.GE, func(a, b float64) bool { return a >= b })
	case cond.LE != nil:
		return c.compare(cond.LE, func(a, b float64) bool { return a <= b })
	case cond.And != nil:
		subs, err := c.conditions(cond.And)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			for _, sub := range subs {
				if !sub(i) {
					return false
				}
			}
			return true
		}, nil
	case cond.Or != nil:
		subs, err := c.conditions(cond.Or)
		if err != nil {
			return nil, err
		}
		return func(i int) bool {
			for _, sub := range subs {
				if sub(i) {
					return true
				}
			}
			return false
		}, nil
	case cond.Not != nil:
		sub, err := c.condition(*cond.Not)
		if err != nil {
			return nil, err
		}
		return func(i int) bool { return !sub(i) }, nil
	default:
		return nil, errors.New("empty condition")
	}
}

func (c *compiler) conditions(conds []Condition) ([]conditionFunc, error) {
	subs := make([]conditionFunc, len(conds))
	for i, cond := range conds {
		sub, err := c.condition(cond)
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}
	return subs, nil
}

func (c *compiler) compare(ops []Operand, cmp func(a, b float64) bool) (conditionFunc, error) {
	a, b, err := c.pair(ops)
	if err != nil {
		return nil, err
	}
	// NaN comparisons are false, so warmup bars never trigger.
	return func(i int) bool { return cmp(a(i), b(i)) }, nil
}

func (c *compiler) pair(ops []Operand) (valueFunc, valueFunc, error) {
	if len(ops) != 2 {
		return nil, nil, fmt.Errorf("expected two operands, got %d", len(ops))
	}
	a, err := c.operand(ops[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := c.operand(ops[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (c *compiler) operand(o Operand) (valueFunc, error) {
	if !o.IsRef {
		literal := o.Literal
		return func(int) float64 { return literal }, nil
	}
	if field, ok := c.fields[o.Ref]; ok {
		return field, nil
	}
	if series, ok := c.series[o.Ref]; ok {
		return func(i int) float64 { return series[i] }, nil
	}
	if param, ok := c.strategy.Params[o.Ref]; ok {
		return func(int) float64 { return param }, nil
	}
	return nil, fmt.Errorf("unknown operand %q, expected a price field, indicator id or param", o.Ref)
}

func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(values)
}
