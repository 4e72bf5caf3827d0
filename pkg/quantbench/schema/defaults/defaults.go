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

package defaults

import (
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
)

// Set makes sure default values are set on a config.
func Set(c *latest.QuantbenchConfig) error {
	setDefaultGateway(&c.Gateway)
	setDefaultAgent(&c.Agent)
	setDefaultRetrieval(&c.Retrieval, c.Agent.BaseURL)
	setDefaultEngine(&c.Engine)
	setDefaultDatabase(&c.Database)
	setDefaultImport(&c.Import)
	return nil
}

func setDefaultGateway(g *latest.GatewayConfig) {
	if g.Address == "" {
		g.Address = constants.DefaultGatewayAddress
	}
	if g.Port == 0 {
		g.Port = constants.DefaultGatewayPort
	}
	if g.EngineURL == "" {
		g.EngineURL = constants.DefaultEngineURL
	}
}

func setDefaultAgent(a *latest.AgentConfig) {
	if a.Model == "" {
		a.Model = constants.DefaultChatModel
	}
	if a.BaseURL == "" {
		a.BaseURL = constants.DefaultLLMBaseURL
	}
	if a.Temperature == nil {
		a.Temperature = util.Float64Ptr(constants.DefaultTemperature)
	}
	if a.MaxTurns == 0 {
		a.MaxTurns = constants.DefaultMaxTurns
	}
}

func setDefaultRetrieval(r *latest.RetrievalConfig, agentBaseURL string) {
	if r.Collection == "" {
		r.Collection = constants.DefaultCollection
	}
	if r.EmbeddingModel == "" {
		r.EmbeddingModel = constants.DefaultEmbeddingModel
	}
	if r.EmbeddingURL == "" {
		r.EmbeddingURL = agentBaseURL
	}
	if r.Dimensions == 0 {
		r.Dimensions = constants.DefaultEmbeddingDims
	}
	if r.TopK == 0 {
		r.TopK = constants.DefaultRAGTopK
	}
}

func setDefaultEngine(e *latest.EngineConfig) {
	if e.Address == "" {
		e.Address = constants.DefaultEngineAddress
	}
	if e.Port == 0 {
		e.Port = constants.DefaultEnginePort
	}
	if e.StartCash == nil {
		e.StartCash = util.Float64Ptr(constants.DefaultStartCash)
	}
}

func setDefaultDatabase(d *latest.DatabaseConfig) {
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = constants.DefaultDBMaxOpenConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = constants.DefaultDBMaxIdleConns
	}
}

func setDefaultImport(i *latest.ImportConfig) {
	if i.Table == "" {
		i.Table = constants.DefaultTickTable
	}
	if i.BatchSize == 0 {
		i.BatchSize = constants.DefaultImportBatchSize
	}
	if len(i.Include) == 0 {
		i.Include = []string{"**/*.csv", "**/*.csv.gz", "**/*.zip"}
	}
	if i.Encoding == "" {
		i.Encoding = "auto"
	}
}
