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

package latest

import (
	"fmt"

	"github.com/quantbench/quantbench/pkg/quantbench/schema/util"
)

const Version string = "quantbench/v1"

// NewQuantbenchConfig creates a QuantbenchConfig
func NewQuantbenchConfig() util.VersionedConfig {
	return new(QuantbenchConfig)
}

type QuantbenchConfig struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`

	// Metadata holds additional information about the config.
	Metadata Metadata `yaml:"metadata,omitempty"`

	// Pipeline defines the trading desk services.
	Pipeline `yaml:",inline"`

	// Profiles (beta) override pieces of the configuration when activated
	// by command line flag, command or environment variable.
	Profiles []Profile `yaml:"profiles,omitempty"`
}

type Metadata struct {
	// Name is an identifier for the project.
	Name string `yaml:"name,omitempty"`
}

// Pipeline describes the sections shared between the main configuration and
// profiles.
type Pipeline struct {
	// Gateway configures the chat API service.
	Gateway GatewayConfig `yaml:"gateway,omitempty"`

	// Agent configures the trading assistant and its language model.
	Agent AgentConfig `yaml:"agent,omitempty"`

	// Retrieval configures the knowledge base lookups that enrich chat turns.
	Retrieval RetrievalConfig `yaml:"retrieval,omitempty"`

	// Engine configures the backtest engine service.
	Engine EngineConfig `yaml:"engine,omitempty"`

	// Database configures the shared Postgres connection.
	Database DatabaseConfig `yaml:"database,omitempty"`

	// Import configures the tick data importer.
	Import ImportConfig `yaml:"import,omitempty"`
}

// GatewayConfig contains the chat API server settings.
type GatewayConfig struct {
	// Address is the interface the gateway binds to.
	// Defaults to `0.0.0.0`.
	Address string `yaml:"address,omitempty"`

	// Port is the gateway's listen port. The gateway falls back to a nearby
	// port when the preferred one is taken.
	// Defaults to `8000`.
	Port int `yaml:"port,omitempty"`

	// EngineURL is the base URL of the backtest engine the agent's tool
	// calls into. Defaults to `http://localhost:8001`.
	EngineURL string `yaml:"engineURL,omitempty"`
}

// AgentConfig contains the language model settings for the trading assistant.
type AgentConfig struct {
	// Model is the chat completion model name.
	// Defaults to `deepseek-chat`.
	Model string `yaml:"model,omitempty"`

	// BaseURL is the OpenAI-compatible API endpoint.
	// Defaults to `https://api.deepseek.com`.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Temperature is the sampling temperature.
	// Defaults to `0.7`.
	Temperature *float64 `yaml:"temperature,omitempty"`

	// MaxTurns caps the tool-calling round trips in a single chat request.
	// Defaults to `10`.
	MaxTurns int `yaml:"maxTurns,omitempty"`

	// SystemPrompt replaces the built-in system prompt. Supports go
	// templates with environment variables.
	SystemPrompt string `yaml:"systemPrompt,omitempty"`
}

// RetrievalConfig contains the knowledge base settings.
type RetrievalConfig struct {
	// Collection is the knowledge base collection name.
	// Defaults to `knowledge_base`.
	Collection string `yaml:"collection,omitempty"`

	// EmbeddingModel is the model used to embed documents and queries.
	// Defaults to `BAAI/bge-small-zh-v1.5`.
	EmbeddingModel string `yaml:"embeddingModel,omitempty"`

	// EmbeddingURL is the OpenAI-compatible endpoint serving embeddings.
	// Defaults to the agent's `baseURL`.
	EmbeddingURL string `yaml:"embeddingURL,omitempty"`

	// Dimensions is the embedding vector width.
	// Defaults to `512`.
	Dimensions int `yaml:"dimensions,omitempty"`

	// TopK is the number of documents retrieved per chat turn.
	// Defaults to `1`.
	TopK int `yaml:"topK,omitempty"`
}

// EngineConfig contains the backtest engine server settings.
type EngineConfig struct {
	// Address is the interface the engine binds to.
	// Defaults to `0.0.0.0`.
	Address string `yaml:"address,omitempty"`

	// Port is the engine's listen port.
	// Defaults to `8001`.
	Port int `yaml:"port,omitempty"`

	// StartCash is the broker's starting cash when a request does not
	// specify one. Defaults to `100000`.
	StartCash *float64 `yaml:"startCash,omitempty"`
}

// DatabaseConfig contains the Postgres settings shared by the knowledge base,
// chat transcripts and the tick store.
type DatabaseConfig struct {
	// URI is the Postgres connection string. Supports go templates with
	// environment variables, for example `{{.DB_URI}}`. The `DB_URI`
	// environment variable and the `--db-uri` flag take precedence.
	URI string `yaml:"uri,omitempty"`

	// MaxOpenConns bounds the connection pool.
	// Defaults to `10`.
	MaxOpenConns int `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the number of idle connections kept around.
	// Defaults to `1`.
	MaxIdleConns int `yaml:"maxIdleConns,omitempty"`
}

// ImportConfig contains the tick data importer settings.
type ImportConfig struct {
	// Source is the directory or `gs://` bucket holding yearly tick data
	// folders.
	Source string `yaml:"source,omitempty"`

	// Table is the destination table for tick rows.
	// Defaults to `futures_tick_data`.
	Table string `yaml:"table,omitempty"`

	// BatchSize is the number of CSV files committed per transaction.
	// Defaults to `100`.
	BatchSize int `yaml:"batchSize,omitempty"`

	// Workers is the number of year folders imported in parallel.
	// Defaults to the number of CPUs.
	Workers int `yaml:"workers,omitempty"`

	// Include lists glob patterns for files to import, relative to Source.
	// Defaults to `["**/*.csv", "**/*.csv.gz", "**/*.zip"]`.
	Include []string `yaml:"include,omitempty"`

	// Encoding is the CSV character encoding: `auto`, `utf-8` or `gbk`.
	// With `auto`, files are read as UTF-8 and re-read as GBK when they
	// don't decode. Defaults to `auto`.
	Encoding string `yaml:"encoding,omitempty"`
}

// Profile is used to override any `gateway`, `agent`, `retrieval`, `engine`,
// `database` or `import` configuration.
type Profile struct {
	// Name is a unique profile name.
	// For example: `paper-trading`.
	Name string `yaml:"name"`

	// Activation criteria by which a profile can be auto-activated.
	// The profile is auto-activated if any one of the activations are
	// triggered.
	Activation []Activation `yaml:"activation,omitempty"`

	// Pipeline contains the definitions to replace the default
	// quantbench.yaml configuration.
	Pipeline `yaml:",inline"`
}

// Activation criteria by which a profile is auto-activated.
type Activation struct {
	// Env is a `key=pattern` pair. The profile is auto-activated if an
	// environment variable `key` matches the pattern. The pattern matches
	// if the environment variable value does exactly match or with regex.
	// For example: `ENV=production`.
	Env string `yaml:"env,omitempty"`

	// Command is the quantbench command for which the profile is
	// auto-activated.
	// For example: `gateway`.
	Command string `yaml:"command,omitempty"`
}

func (c *QuantbenchConfig) GetVersion() string {
	return c.APIVersion
}

// Upgrade returns an error since the latest version cannot be upgraded.
func (c *QuantbenchConfig) Upgrade() (util.VersionedConfig, error) {
	return nil, fmt.Errorf("%s is the most recent version", Version)
}
