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
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/testutil"
)

func TestSetDefaults(t *testing.T) {
	cfg := &latest.QuantbenchConfig{}

	err := Set(cfg)

	testutil.CheckError(t, false, err)
	testutil.CheckDeepEqual(t, constants.DefaultGatewayAddress, cfg.Gateway.Address)
	testutil.CheckDeepEqual(t, constants.DefaultGatewayPort, cfg.Gateway.Port)
	testutil.CheckDeepEqual(t, constants.DefaultEngineURL, cfg.Gateway.EngineURL)
	testutil.CheckDeepEqual(t, constants.DefaultChatModel, cfg.Agent.Model)
	testutil.CheckDeepEqual(t, constants.DefaultLLMBaseURL, cfg.Agent.BaseURL)
	testutil.CheckDeepEqual(t, constants.DefaultTemperature, *cfg.Agent.Temperature)
	testutil.CheckDeepEqual(t, constants.DefaultMaxTurns, cfg.Agent.MaxTurns)
	testutil.CheckDeepEqual(t, constants.DefaultCollection, cfg.Retrieval.Collection)
	testutil.CheckDeepEqual(t, constants.DefaultEmbeddingModel, cfg.Retrieval.EmbeddingModel)
	testutil.CheckDeepEqual(t, constants.DefaultLLMBaseURL, cfg.Retrieval.EmbeddingURL)
	testutil.CheckDeepEqual(t, constants.DefaultEmbeddingDims, cfg.Retrieval.Dimensions)
	testutil.CheckDeepEqual(t, constants.DefaultRAGTopK, cfg.Retrieval.TopK)
	testutil.CheckDeepEqual(t, constants.DefaultEngineAddress, cfg.Engine.Address)
	testutil.CheckDeepEqual(t, constants.DefaultEnginePort, cfg.Engine.Port)
	testutil.CheckDeepEqual(t, constants.DefaultStartCash, *cfg.Engine.StartCash)
	testutil.CheckDeepEqual(t, constants.DefaultDBMaxOpenConns, cfg.Database.MaxOpenConns)
	testutil.CheckDeepEqual(t, constants.DefaultDBMaxIdleConns, cfg.Database.MaxIdleConns)
	testutil.CheckDeepEqual(t, constants.DefaultTickTable, cfg.Import.Table)
	testutil.CheckDeepEqual(t, constants.DefaultImportBatchSize, cfg.Import.BatchSize)
	testutil.CheckDeepEqual(t, []string{"**/*.csv", "**/*.csv.gz", "**/*.zip"}, cfg.Import.Include)
	testutil.CheckDeepEqual(t, "auto", cfg.Import.Encoding)
}

func TestSetDefaultsKeepsValues(t *testing.T) {
	cfg := &latest.QuantbenchConfig{
		Pipeline: latest.Pipeline{
			Gateway: latest.GatewayConfig{Port: 9000},
			Agent:   latest.AgentConfig{Temperature: util.Float64Ptr(0)},
			Retrieval: latest.RetrievalConfig{
				EmbeddingURL: "http://embeddings.internal:8080",
			},
			Engine: latest.EngineConfig{StartCash: util.Float64Ptr(5000)},
			Import: latest.ImportConfig{Include: []string{"2024/**"}, Encoding: "utf-8"},
		},
	}

	err := Set(cfg)

	testutil.CheckError(t, false, err)
	testutil.CheckDeepEqual(t, 9000, cfg.Gateway.Port)
	testutil.CheckDeepEqual(t, float64(0), *cfg.Agent.Temperature)
	testutil.CheckDeepEqual(t, "http://embeddings.internal:8080", cfg.Retrieval.EmbeddingURL)
	testutil.CheckDeepEqual(t, float64(5000), *cfg.Engine.StartCash)
	testutil.CheckDeepEqual(t, []string{"2024/**"}, cfg.Import.Include)
	testutil.CheckDeepEqual(t, "utf-8", cfg.Import.Encoding)
}
