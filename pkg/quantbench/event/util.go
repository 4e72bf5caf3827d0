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

package event

import (
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

func initializeMetadata(pipeline latest.Pipeline) *Metadata {
	return &Metadata{
		Model:      pipeline.Agent.Model,
		Collection: pipeline.Retrieval.Collection,
		TickTable:  pipeline.Import.Table,
		EngineURL:  pipeline.Gateway.EngineURL,
	}
}
