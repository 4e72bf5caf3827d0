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

package initializer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

// customModelOption lets the user type a model name the picker doesn't list.
const customModelOption = "other (type a model name)"

// For testing
var (
	askProjectName = promptProjectName
	askChatModel   = promptChatModel
	askDatabaseURI = promptDatabaseURI
	askEngineURL   = promptEngineURL
	confirmWrite   = promptWriteConfig
)

func promptProjectName() (string, error) {
	var name string
	prompt := &survey.Input{
		Message: "What should this project be called?",
		Default: "quantbench",
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func promptChatModel() (string, error) {
	var model string
	prompt := &survey.Select{
		Message:  "Choose the chat model the trading assistant talks to",
		Options:  []string{constants.DefaultChatModel, "deepseek-reasoner", customModelOption},
		Default:  constants.DefaultChatModel,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &model); err != nil {
		return "", err
	}
	if model != customModelOption {
		return model, nil
	}

	if err := survey.AskOne(&survey.Input{Message: "Model name"}, &model); err != nil {
		return "", err
	}
	return strings.TrimSpace(model), nil
}

func promptDatabaseURI() (string, error) {
	var uri string
	prompt := &survey.Input{
		Message: "Postgres connection URI (leave empty to rely on " + constants.DBURIEnvironmentVariable + ")",
	}
	if err := survey.AskOne(prompt, &uri); err != nil {
		return "", err
	}
	return strings.TrimSpace(uri), nil
}

func promptEngineURL() (string, error) {
	var url string
	prompt := &survey.Input{
		Message: "Backtest engine URL the gateway's tool calls into",
		Default: constants.DefaultEngineURL,
	}
	if err := survey.AskOne(prompt, &url); err != nil {
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// promptWriteConfig shows the generated config and loops until the user
// answers y or n. It returns true when the user declined the write.
func promptWriteConfig(out io.Writer, generated []byte, filePath string) (bool, error) {
	fmt.Fprintln(out, string(generated))

	reader := bufio.NewReader(os.Stdin)
confirmLoop:
	for {
		fmt.Fprintf(out, "Do you want to write this configuration to %s? [y/n]: ", filePath)

		response, err := reader.ReadString('\n')
		if err != nil {
			return true, fmt.Errorf("reading user confirmation: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "y", "yes":
			break confirmLoop
		case "n", "no":
			return true, nil
		}
	}
	return false, nil
}
