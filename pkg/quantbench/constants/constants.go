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

package constants

import (
	"github.com/sirupsen/logrus"
)

// Phase describes a high level task a log entry or event belongs to.
type Phase string

const (
	Service   = Phase("Service")
	Chat      = Phase("Chat")
	Retrieval = Phase("Retrieval")
	Tool      = Phase("Tool")
	Ingest    = Phase("Ingest")
	Backtest  = Phase("Backtest")
	Import    = Phase("Import")
	Config    = Phase("Config")
	DB        = Phase("DB")

	SubtaskIDNone = "-"
)

const (
	// DefaultLogLevel is the default global verbosity
	DefaultLogLevel = logrus.WarnLevel

	// DefaultConfigFile is the project configuration read from the working directory
	DefaultConfigFile = "quantbench.yaml"

	// DefaultQuantbenchDir is the per-user directory under $HOME
	DefaultQuantbenchDir = ".quantbench"
	DefaultMetricFile    = "metrics"
	DefaultEventLogFile  = "events"

	// DefaultGatewayAddress binds the chat API on all interfaces, the contract
	// the service has always shipped with.
	DefaultGatewayAddress = "0.0.0.0"
	DefaultGatewayPort    = 8000

	DefaultEngineAddress = "0.0.0.0"
	DefaultEnginePort    = 8001
	DefaultEngineURL     = "http://localhost:8001"

	DefaultLLMBaseURL  = "https://api.deepseek.com"
	DefaultChatModel   = "deepseek-chat"
	DefaultTemperature = 0.7

	DefaultEmbeddingModel = "BAAI/bge-small-zh-v1.5"
	DefaultEmbeddingDims  = 512

	// DefaultCollection is the knowledge base collection documents are
	// ingested into and retrieved from.
	DefaultCollection = "knowledge_base"

	// DefaultTickTable receives imported futures tick rows.
	DefaultTickTable = "futures_tick_data"

	// DefaultImportBatchSize is the number of CSV files whose rows are
	// flushed together in one COPY transaction.
	DefaultImportBatchSize = 100

	// DefaultStartCash is the broker's starting cash when a backtest request
	// does not specify one.
	DefaultStartCash = 100000.0

	// DefaultRAGTopK is how many knowledge documents enrich a chat turn.
	DefaultRAGTopK = 1

	// DefaultMaxTurns caps agent loop iterations per chat request.
	DefaultMaxTurns = 10

	// DefaultEngineTimeout bounds a single backtest tool invocation.
	DefaultEngineTimeoutSeconds = 30

	// Pool sizing for the shared Postgres pool.
	DefaultDBMaxOpenConns = 10
	DefaultDBMaxIdleConns = 1

	DBURIEnvironmentVariable    = "DB_URI"
	APIKeyEnvironmentVariable   = "DEEPSEEK_API_KEY"
	ExportMetricsEnvVariable    = "QUANTBENCH_EXPORT_METRICS"
	ExportToStdoutEnvVariable   = "QUANTBENCH_EXPORT_TO_STDOUT"
	TraceEnvironmentVariable    = "QUANTBENCH_TRACE"
	ProfilerEnvironmentVariable = "QUANTBENCH_PROFILER"

	Windows = "windows"
)
