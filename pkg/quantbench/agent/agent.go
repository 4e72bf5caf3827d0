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

// Package agent runs chat turns for the trading assistant: it enriches the
// user's question with knowledge base hits, loops the model against the
// registered tools until the model stops requesting them, and checkpoints the
// transcript per thread.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/checkpoint"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/llm"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/rag"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

// ChatModel is the completion call the agent loops on.
type ChatModel interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.ChatResult, error)
}

// Searcher looks up knowledge documents for a user question.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]rag.Document, error)
}

// Agent answers chat turns for the gateway.
type Agent struct {
	model        ChatModel
	store        Searcher
	saver        checkpoint.Saver
	tools        []Tool
	specs        []llm.Tool
	topK         int
	maxTurns     int
	systemPrompt string
}

// New builds an agent from the pipeline's agent and retrieval sections. A nil
// store disables knowledge enrichment.
func New(model ChatModel, store Searcher, saver checkpoint.Saver, pipeline latest.Pipeline, tools ...Tool) (*Agent, error) {
	prompt, err := systemPrompt(pipeline.Agent)
	if err != nil {
		return nil, fmt.Errorf("building system prompt: %w", err)
	}

	maxTurns := pipeline.Agent.MaxTurns
	if maxTurns <= 0 {
		maxTurns = constants.DefaultMaxTurns
	}
	topK := pipeline.Retrieval.TopK
	if topK <= 0 {
		topK = constants.DefaultRAGTopK
	}

	specs := make([]llm.Tool, len(tools))
	for i, tool := range tools {
		specs[i] = tool.Spec()
	}

	return &Agent{
		model:        model,
		store:        store,
		saver:        saver,
		tools:        tools,
		specs:        specs,
		topK:         topK,
		maxTurns:     maxTurns,
		systemPrompt: prompt,
	}, nil
}

// Chat runs one turn on the thread and returns the assistant's final text.
func (a *Agent) Chat(ctx context.Context, threadID, message string) (string, error) {
	event.ChatInProgress(threadID)
	answer, err := a.chat(ctx, threadID, message)
	if err != nil {
		event.ChatFailed(threadID, err)
		return "", err
	}
	event.ChatComplete(threadID)
	instrumentation.AddChatTurn()
	return answer, nil
}

func (a *Agent) chat(ctx context.Context, threadID, message string) (string, error) {
	messages, err := a.saver.Load(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("loading thread %q: %w", threadID, err)
	}
	if len(messages) == 0 && a.systemPrompt != "" {
		messages = append(messages, llm.SystemMessage(a.systemPrompt))
	}
	messages = append(messages, llm.UserMessage(a.enrich(ctx, threadID, message)))

	var answer string
	for turn := 0; turn < a.maxTurns; turn++ {
		result, err := a.model.Chat(ctx, messages, a.specs)
		if err != nil {
			return "", err
		}
		messages = append(messages, result.Message)
		answer = result.Message.Content

		if len(result.Message.ToolCalls) == 0 {
			break
		}
		if turn == a.maxTurns-1 {
			// The transcript must answer every tool call or the API rejects
			// the thread's next turn.
			log.Entry(ctx).Warnf("thread %q stopped after %d turns with tool calls pending", threadID, a.maxTurns)
			for _, call := range result.Message.ToolCalls {
				messages = append(messages, llm.ToolMessage(call.ID, call.Function.Name, "tool call skipped: turn limit reached"))
			}
			break
		}
		for _, call := range result.Message.ToolCalls {
			messages = append(messages, a.dispatch(ctx, call))
		}
	}

	if err := a.saver.Save(ctx, threadID, messages); err != nil {
		return "", fmt.Errorf("saving thread %q: %w", threadID, err)
	}
	return answer, nil
}

// enrich prepends knowledge base hits to the user's question. Lookup problems
// cost the enrichment, never the turn.
func (a *Agent) enrich(ctx context.Context, threadID, message string) string {
	if a.store == nil {
		return message
	}
	docs, err := a.store.Search(ctx, message, a.topK)
	if err != nil {
		log.Entry(ctx).Warnf("knowledge base lookup failed: %v", err)
		return message
	}
	if len(docs) == 0 {
		return message
	}

	contents := make([]string, len(docs))
	for i, doc := range docs {
		event.RagHit(threadID, doc.ID)
		contents[i] = doc.Content
	}
	return fmt.Sprintf("[Reference knowledge]\n%s\n\nUser question: %s", strings.Join(contents, "\n\n"), message)
}

// dispatch runs one tool call and renders its outcome as a tool message. Tool
// failures stay model-visible instead of failing the turn.
func (a *Agent) dispatch(ctx context.Context, call llm.ToolCall) llm.Message {
	name := call.Function.Name
	tool := a.tool(name)
	if tool == nil {
		log.Entry(ctx).Warnf("model requested unknown tool %q", name)
		return llm.ToolMessage(call.ID, name, fmt.Sprintf("unknown tool %q", name))
	}

	event.ToolInvoked(name)
	instrumentation.AddToolCall()
	result, err := tool.Exec(ctx, call.Function.Arguments)
	if err != nil {
		event.ToolFailed(name, err)
		log.Entry(ctx).Warnf("tool %s failed: %v", name, err)
		if result == "" {
			result = err.Error()
		}
	} else {
		event.ToolComplete(name)
	}
	return llm.ToolMessage(call.ID, name, result)
}

func (a *Agent) tool(name string) Tool {
	for _, tool := range a.tools {
		if tool.Spec().Function.Name == name {
			return tool
		}
	}
	return nil
}
