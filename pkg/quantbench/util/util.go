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
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

func RandomID() string {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b)
}

func StrSliceContains(sl []string, s string) bool {
	for _, a := range sl {
		if a == s {
			return true
		}
	}
	return false
}

// RemoveFromSlice removes a string from a slice of strings
func RemoveFromSlice(s []string, target string) []string {
	for i, val := range s {
		if val == target {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// BoolPtr returns a pointer to a bool
func BoolPtr(b bool) *bool {
	o := b
	return &o
}

// StringPtr returns a pointer to a string
func StringPtr(s string) *string {
	o := s
	return &o
}

// Float64Ptr returns a pointer to a float64
func Float64Ptr(f float64) *float64 {
	o := f
	return &o
}

// IntPtr returns a pointer to an int
func IntPtr(i int) *int {
	o := i
	return &o
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RegexEqual matches the string 'actual' against a regex compiled from
// 'expected'. If 'expected' is not a valid regex, string comparison is used
// as fallback. A leading `!` negates the match.
func RegexEqual(expected, actual string) bool {
	if strings.HasPrefix(expected, "!") {
		notExpected := expected[1:]
		return !regexMatch(notExpected, actual)
	}
	return regexMatch(expected, actual)
}

func regexMatch(expected, actual string) bool {
	if actual == expected {
		return true
	}

	matcher, err := regexp.Compile(expected)
	if err != nil {
		return false
	}
	return matcher.MatchString(actual)
}

// ReadConfiguration reads a `quantbench.yaml` configuration, from a file,
// an http/https url or stdin when filePath is `-`. When the default file
// name is not found, the `.yml` variant is tried before giving up.
func ReadConfiguration(filePath string) ([]byte, error) {
	switch {
	case filePath == "":
		return nil, errors.New("filename not specified")
	case filePath == "-":
		return io.ReadAll(os.Stdin)
	case IsURL(filePath):
		return Download(filePath)
	default:
		if filepath.Base(filePath) != constants.DefaultConfigFile {
			return os.ReadFile(filePath)
		}
		contents, err := os.ReadFile(filePath)
		if err != nil {
			log.Entry(context.TODO()).Infof("Could not open %s: %v", filePath, err)
			log.Entry(context.TODO()).Infof("Trying to read from quantbench.yml instead")
			return os.ReadFile(filepath.Join(filepath.Dir(filePath), "quantbench.yml"))
		}
		return contents, err
	}
}

func Download(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getting %s: status code %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// VerifyOrCreateFile checks if a file exists at the given path,
// and if not, creates all parent directories and creates the file.
func VerifyOrCreateFile(path string) error {
	_, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) {
		dir := filepath.Dir(path)
		if err = os.MkdirAll(dir, 0744); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
		if _, err = os.Create(path); err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		return nil
	}
	return err
}
