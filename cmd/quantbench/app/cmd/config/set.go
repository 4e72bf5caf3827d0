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
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantbench/quantbench/pkg/quantbench/config"
)

// NewCmdSet describes the CLI command to set a value in the global config.
func NewCmdSet(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a value in the global Quantbench config",
		Example: `  quantbench config set engine-url http://engine:8001
  quantbench config set --global collect-metrics false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveDatabase()
			if err := setConfigValue(args[0], args[1]); err != nil {
				return err
			}
			logSetConfigForUser(out, args[0], args[1])
			return nil
		},
	}
	AddCommonFlags(cmd)
	AddSetUnsetFlags(cmd)
	return cmd
}

func setConfigValue(name string, value string) error {
	cfg, err := getOrCreateConfigForDatabase()
	if err != nil {
		return err
	}

	fieldIdx, err := fieldIndex(name)
	if err != nil {
		return err
	}

	field := reflect.Indirect(reflect.ValueOf(cfg)).Field(fieldIdx)
	val, err := parseAsType(value, field)
	if err != nil {
		return fmt.Errorf("%s is not a valid value for field %s", value, name)
	}
	field.Set(val)

	return writeConfig(cfg)
}

// fieldIndex finds the ContextConfig field carrying the given yaml tag.
func fieldIndex(name string) (int, error) {
	t := reflect.TypeOf(config.ContextConfig{})
	for i := 0; i < t.NumField(); i++ {
		for _, tag := range strings.Split(t.Field(i).Tag.Get("yaml"), ",") {
			if tag == name {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%s is not a valid config field", name)
}

func parseAsType(value string, field reflect.Value) (reflect.Value, error) {
	fieldType := field.Type()
	switch fieldType.String() {
	case "string":
		return reflect.ValueOf(value), nil
	case "*bool":
		if value == "" {
			return reflect.Zero(fieldType), nil
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&parsed), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type: %s", fieldType)
	}
}
