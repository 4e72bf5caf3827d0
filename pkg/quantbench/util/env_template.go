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

package util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

// For testing
var (
	OSEnviron = os.Environ
)

var funcsMap template.FuncMap = initFuncsMap()

func initFuncsMap() template.FuncMap {
	funcsMap := sprig.FuncMap()
	funcsMap["default"] = defaultFunc
	funcsMap["cmd"] = runCmdFunc
	return funcsMap
}

// ExpandEnvTemplate parses and executes template s with an optional environment map
func ExpandEnvTemplate(s string, envMap map[string]string) (string, error) {
	tmpl, err := ParseEnvTemplate(s)
	if err != nil {
		return "", fmt.Errorf("unable to parse template: %q: %w", s, err)
	}

	return ExecuteEnvTemplate(tmpl, envMap)
}

// ExpandEnvTemplateOrFail parses and executes template s with an optional
// environment map, and errors if a reference cannot be satisfied.
func ExpandEnvTemplateOrFail(s string, envMap map[string]string) (string, error) {
	tmpl, err := ParseEnvTemplate(s)
	if err != nil {
		return "", fmt.Errorf("unable to parse template: %q: %w", s, err)
	}

	tmpl = tmpl.Option("missingkey=error")
	return ExecuteEnvTemplate(tmpl, envMap)
}

// ParseEnvTemplate is a simple wrapper to parse an env template
func ParseEnvTemplate(t string) (*template.Template, error) {
	return template.New("envTemplate").Funcs(funcsMap).Parse(t)
}

// ExecuteEnvTemplate executes an envTemplate based on OS environment variables and a custom map
func ExecuteEnvTemplate(envTemplate *template.Template, customMap map[string]string) (string, error) {
	envMap := map[string]string{}
	for _, env := range OSEnviron() {
		kvp := strings.SplitN(env, "=", 2)
		envMap[kvp[0]] = kvp[1]
	}

	for k, v := range customMap {
		envMap[k] = v
	}

	var buf bytes.Buffer
	log.Entry(context.TODO()).Debugf("Executing template %v with environment %v", envTemplate, envMap)
	if err := envTemplate.Execute(&buf, envMap); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// defaultFunc is a sprig-like `default` that also treats non-nil pointers as
// set, so deliberately-zero *bool and *int values are not replaced.
func defaultFunc(dflt, value interface{}) interface{} {
	if value == nil {
		return dflt
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String, reflect.Map:
		if v.Len() == 0 {
			return dflt
		}
	case reflect.Bool:
		if !v.Bool() {
			return dflt
		}
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return dflt
		}
	default:
		if v.IsZero() {
			return dflt
		}
	}
	return value
}

// runCmdFunc is the `cmd` template function. It runs the command and
// substitutes its trimmed stdout.
func runCmdFunc(name string, args ...string) (string, error) {
	res, err := RunCmdOut(exec.Command(name, args...))
	return strings.TrimSuffix(string(res), "\n"), err
}
