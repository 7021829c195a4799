// Package twin implements the RAG orchestrator behind the digital twin.
package twin

import (
	"context"
	"fmt"
	"sync"

	"github.com/twinlabs/twin/internal/availability"
	"github.com/twinlabs/twin/internal/llm"
	"github.com/twinlabs/twin/internal/logging"
	"github.com/twinlabs/twin/internal/retrieval"
)

// Conversation roles as supplied by callers
const (
	RoleUser = "user"
	RoleTwin = "twin"
)

// Turn is one message of the caller-supplied conversation history. The
// engine is stateless across requests; history always arrives with the call.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the grounded response with its cited sources, in retrieval order
type Answer struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Retriever finds supporting documents for a query
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]retrieval.Document, error)
}

// StatusSource supplies the live availability status
type StatusSource interface {
	Status(ctx context.Context) (availability.Status, error)
}

// Completer generates a grounded completion over a message sequence
type Completer interface {
	Generate(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// Config for the engine
type Config struct {
	PersonaName string  // Person the twin represents
	TopK        int     // Documents retrieved per query, default 3
	Temperature float64 // Sampling temperature, default 0.7
	MaxTokens   int     // Completion length cap, default 500
}

// Engine orchestrates retrieval, availability and completion into one answer
type Engine struct {
	retriever Retriever
	status    StatusSource
	completer Completer
	cfg       Config
}

// New creates a twin engine
func New(retriever Retriever, status StatusSource, completer Completer, cfg Config) *Engine {
	if cfg.PersonaName == "" {
		cfg.PersonaName = "Aaran"
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}

	return &Engine{
		retriever: retriever,
		status:    status,
		completer: completer,
		cfg:       cfg,
	}
}

// Ask answers a question in the persona's first person, grounded in the
// retrieved documents and the live calendar status.
//
// The availability lookup and document retrieval are independent network
// calls and run concurrently. Either failing degrades the context (unknown
// status / no documents) instead of failing the request; only a completion
// failure is surfaced, since no answer can be produced without it.
func (e *Engine) Ask(ctx context.Context, query string, history []Turn) (*Answer, error) {
	var (
		wg     sync.WaitGroup
		status availability.Status
		docs   []retrieval.Document
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		s, err := e.status.Status(ctx)
		if err != nil {
			logging.WithField("error", err).Warn("availability lookup failed, using unknown status")
			s = availability.NotConnected()
		}
		status = s
	}()
	go func() {
		defer wg.Done()
		d, err := e.retriever.Search(ctx, query, e.cfg.TopK)
		if err != nil {
			logging.WithField("error", err).Warn("retrieval failed, answering without documents")
			d = nil
		}
		docs = d
	}()
	wg.Wait()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt(e.cfg.PersonaName)})
	messages = append(messages, historyMessages(history)...)

	grounding := contextBlock(status, docs)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: userPrompt(e.cfg.PersonaName, grounding, query),
	})

	response, err := e.completer.Generate(ctx, messages, e.cfg.Temperature, e.cfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, doc.Source)
	}

	return &Answer{
		Response: response,
		Sources:  sources,
	}, nil
}
