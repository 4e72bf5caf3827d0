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

package config

import (
	"strconv"
)

// StringOrUndefined holds the value of a flag of type `string`,
// that can be set or undefined.
type StringOrUndefined struct {
	value *string
}

func (s StringOrUndefined) Equal(t StringOrUndefined) bool {
	if s.value == nil || t.value == nil {
		return s.value == t.value
	}
	return *s.value == *t.value
}

func (s *StringOrUndefined) Type() string {
	return "string"
}

func (s *StringOrUndefined) Value() *string {
	return s.value
}

func (s *StringOrUndefined) Set(v string) error {
	s.value = &v
	return nil
}

func (s *StringOrUndefined) SetNil() error {
	s.value = nil
	return nil
}

func (s *StringOrUndefined) String() string {
	if s.value == nil {
		return ""
	}
	return *s.value
}

func NewStringOrUndefined(v *string) StringOrUndefined {
	return StringOrUndefined{value: v}
}

// BoolOrUndefined holds the value of a flag of type `bool`,
// that can be set or undefined.
type BoolOrUndefined struct {
	value *bool
}

func (s *BoolOrUndefined) Type() string {
	return "bool"
}

func (s *BoolOrUndefined) Value() *bool {
	return s.value
}

func (s *BoolOrUndefined) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		s.value = nil
		return err
	}

	s.value = &b

	return nil
}

func (s *BoolOrUndefined) SetNil() error {
	s.value = nil
	return nil
}

func (s *BoolOrUndefined) String() string {
	b := s.value
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func NewBoolOrUndefined(v *bool) BoolOrUndefined {
	return BoolOrUndefined{value: v}
}

// IntOrUndefined holds the value of a flag of type `int`,
// that can be set or undefined.
type IntOrUndefined struct {
	value *int
}

func (s *IntOrUndefined) Type() string {
	return "int"
}

func (s *IntOrUndefined) Value() *int {
	return s.value
}

func (s *IntOrUndefined) Set(v string) error {
	i, err := strconv.Atoi(v)
	if err != nil {
		s.value = nil
		return err
	}
	s.value = &i
	return nil
}

func (s *IntOrUndefined) SetNil() error {
	s.value = nil
	return nil
}

func (s *IntOrUndefined) String() string {
	if s.value == nil {
		return ""
	}
	return strconv.Itoa(*s.value)
}

func NewIntOrUndefined(v *int) IntOrUndefined {
	return IntOrUndefined{value: v}
}
