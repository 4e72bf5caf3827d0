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

package testutil

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type BadReader struct{}

func (BadReader) Read([]byte) (int, error) { return 0, fmt.Errorf("bad read") }

type BadWriter struct{}

func (BadWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("bad write") }

// T wraps testing.T with setup teardown tracking and richer assertions.
type T struct {
	*testing.T
	teardownActions []func()
}

// Run runs a subtest with a *T that restores overrides and temp state on exit.
func Run(t *testing.T, name string, f func(t *T)) {
	if name == "" {
		name = t.Name()
	}
	t.Run(name, func(tt *testing.T) {
		t := T{T: tt}
		defer t.RestoreTeardown()
		f(&t)
	})
}

// NewTempDir creates a temporary directory that is removed when the test ends.
func (t *T) NewTempDir() *TempDir {
	return NewTempDir(t.T)
}

// TempFile creates a temporary file with the given content and returns its name.
// The file is removed when the test ends.
func (t *T) TempFile(prefix string, content []byte) string {
	return TempFile(t.T, prefix, content)
}

// SetEnvs sets environment variables for the duration of the test.
func (t *T) SetEnvs(envs map[string]string) {
	teardown := SetEnvs(t.T, envs)
	t.teardownActions = append(t.teardownActions, func() { teardown(t.T) })
}

// Chdir changes the working directory for the duration of the test.
func (t *T) Chdir(dir string) {
	pwd, err := os.Getwd()
	if err != nil {
		t.Fatal("unable to get current directory")
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal("unable to change current directory")
	}
	t.teardownActions = append(t.teardownActions, func() {
		if err := os.Chdir(pwd); err != nil {
			t.Fatal("unable to reset working directory")
		}
	})
}

func (t *T) CheckContains(expected, actual string) {
	t.Helper()
	CheckContains(t.T, expected, actual)
}

func (t *T) CheckNotContains(excluded, actual string) {
	t.Helper()
	if strings.Contains(actual, excluded) {
		t.Errorf("found excluded string in output: %s", excluded)
	}
}

func (t *T) CheckDeepEqual(expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	CheckDeepEqual(t.T, expected, actual, opts...)
}

func (t *T) CheckTrue(actual bool) {
	t.Helper()
	if !actual {
		t.Error("expected true, but found false")
	}
}

func (t *T) CheckFalse(actual bool) {
	t.Helper()
	if actual {
		t.Error("expected false, but found true")
	}
}

// CheckElementsMatch checks that the given slices contain the same elements
// disregarding their order.
func (t *T) CheckElementsMatch(expected, actual []string) {
	t.Helper()

	expectedSorted := make([]string, len(expected))
	copy(expectedSorted, expected)
	sort.Strings(expectedSorted)

	actualSorted := make([]string, len(actual))
	copy(actualSorted, actual)
	sort.Strings(actualSorted)

	CheckDeepEqual(t.T, expectedSorted, actualSorted)
}

func (t *T) CheckErrorAndDeepEqual(shouldErr bool, err error, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	CheckErrorAndDeepEqual(t.T, shouldErr, err, expected, actual, opts...)
}

func (t *T) CheckErrorAndFailNow(shouldErr bool, err error) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Fatal(err)
	}
}

func (t *T) CheckNoError(err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func (t *T) CheckError(shouldErr bool, err error) {
	t.Helper()
	CheckError(t.T, shouldErr, err)
}

// CheckErrorContains checks that an error occurred and contains the given message.
func (t *T) CheckErrorContains(message string, err error) {
	t.Helper()
	if err == nil {
		t.Error("expected error, but returned none")
		return
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("expected message [%s] not found in error: %s", message, err.Error())
	}
}

func (t *T) CheckNil(actual interface{}) {
	t.Helper()
	if !isNil(actual) {
		t.Errorf("expected nil, but got: %v", actual)
	}
}

func (t *T) CheckNotNil(actual interface{}) {
	t.Helper()
	if isNil(actual) {
		t.Error("expected non-nil value")
	}
}

func (t *T) CheckEmpty(actual interface{}) {
	t.Helper()
	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		if v.Len() != 0 {
			t.Errorf("expected empty, but got: %v", actual)
		}
	default:
		t.Errorf("unsupported type for CheckEmpty: %T", actual)
	}
}

func (t *T) RequireNoError(err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// RestoreTeardown restores every override in reverse order.
func (t *T) RestoreTeardown() {
	for i := len(t.teardownActions) - 1; i >= 0; i-- {
		t.teardownActions[i]()
	}
}

func CheckContains(t *testing.T, expected, actual string) {
	t.Helper()
	if !strings.Contains(actual, expected) {
		t.Errorf("expected output %s not found in output: %s", expected, actual)
	}
}

func CheckDeepEqual(t *testing.T, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(expected, actual, opts...); diff != "" {
		t.Errorf("%T differ (-got, +want): %s", expected, diff)
	}
}

func CheckErrorAndDeepEqual(t *testing.T, shouldErr bool, err error, expected, actual interface{}, opts ...cmp.Option) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
		return
	}
	CheckDeepEqual(t, expected, actual, opts...)
}

func CheckError(t *testing.T, shouldErr bool, err error) {
	t.Helper()
	if err := checkErr(shouldErr, err); err != nil {
		t.Error(err)
	}
}

func checkErr(shouldErr bool, err error) error {
	if err == nil && shouldErr {
		return fmt.Errorf("expected error, but returned none")
	}
	if err != nil && !shouldErr {
		return fmt.Errorf("unexpected error: %s", err)
	}
	return nil
}

func isNil(actual interface{}) bool {
	if actual == nil {
		return true
	}
	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// TempFile creates a temporary file with the given content and returns its name.
// The file is removed when the test ends.
func TempFile(t *testing.T, prefix string, content []byte) string {
	file, err := os.CreateTemp("", prefix)
	if err != nil {
		t.Error(err)
	}
	t.Cleanup(func() {
		file.Close()
		os.Remove(file.Name())
	})
	if err := os.WriteFile(file.Name(), content, 0644); err != nil {
		t.Error(err)
	}
	return file.Name()
}

// SetEnvs takes a map of key values to set using os.Setenv and returns
// a function that can be called to reset the envs to their previous values.
func SetEnvs(t *testing.T, envs map[string]string) func(*testing.T) {
	prevEnvs := map[string]string{}
	for key, value := range envs {
		prevEnv := os.Getenv(key)
		prevEnvs[key] = prevEnv
		if err := os.Setenv(key, value); err != nil {
			t.Error(err)
		}
	}
	return func(t *testing.T) {
		for key, value := range prevEnvs {
			if err := os.Setenv(key, value); err != nil {
				t.Error(err)
			}
		}
	}
}
