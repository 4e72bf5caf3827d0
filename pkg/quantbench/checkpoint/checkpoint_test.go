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

package checkpoint

import (
	"context"
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/llm"
	"github.com/quantbench/quantbench/testutil"
)

func TestInMemorySaver(t *testing.T) {
	testutil.Run(t, "new thread loads empty", func(t *testutil.T) {
		saver := NewInMemorySaver()

		messages, err := saver.Load(context.Background(), "t1")

		t.CheckNoError(err)
		t.CheckDeepEqual([]llm.Message{}, messages)
	})

	testutil.Run(t, "save then load round trips", func(t *testutil.T) {
		saver := NewInMemorySaver()
		transcript := []llm.Message{
			llm.SystemMessage("you are a quant assistant"),
			llm.UserMessage("backtest an SMA crossover"),
			{Role: llm.RoleAssistant, Content: "running it"},
		}

		t.CheckNoError(saver.Save(context.Background(), "t1", transcript))
		messages, err := saver.Load(context.Background(), "t1")

		t.CheckNoError(err)
		t.CheckDeepEqual(transcript, messages)
	})

	testutil.Run(t, "threads are isolated", func(t *testutil.T) {
		saver := NewInMemorySaver()

		t.CheckNoError(saver.Save(context.Background(), "t1", []llm.Message{llm.UserMessage("one")}))
		t.CheckNoError(saver.Save(context.Background(), "t2", []llm.Message{llm.UserMessage("two")}))
		messages, err := saver.Load(context.Background(), "t2")

		t.CheckNoError(err)
		t.CheckDeepEqual([]llm.Message{llm.UserMessage("two")}, messages)
	})

	testutil.Run(t, "loaded slice does not alias the stored one", func(t *testutil.T) {
		saver := NewInMemorySaver()

		t.CheckNoError(saver.Save(context.Background(), "t1", []llm.Message{llm.UserMessage("original")}))
		loaded, err := saver.Load(context.Background(), "t1")
		t.CheckNoError(err)
		loaded[0].Content = "mutated"

		again, err := saver.Load(context.Background(), "t1")
		t.CheckNoError(err)
		t.CheckDeepEqual("original", again[0].Content)
	})

	testutil.Run(t, "resave replaces the transcript", func(t *testutil.T) {
		saver := NewInMemorySaver()

		t.CheckNoError(saver.Save(context.Background(), "t1", []llm.Message{llm.UserMessage("one"), llm.UserMessage("two")}))
		t.CheckNoError(saver.Save(context.Background(), "t1", []llm.Message{llm.UserMessage("three")}))
		messages, err := saver.Load(context.Background(), "t1")

		t.CheckNoError(err)
		t.CheckDeepEqual([]llm.Message{llm.UserMessage("three")}, messages)
	})
}
