// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mnemo-dev/mnemo/internal/engine"
	"github.com/mnemo-dev/mnemo/internal/recall"
	"github.com/mnemo-dev/mnemo/internal/store"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Turn endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "turn-start",
		Method:      http.MethodPost,
		Path:        "/v1/turn",
		Summary:     "Run the per-turn memory pipeline for a prompt",
		Tags:        []string{"turn"},
	}, s.handleTurnStart)

	// Memory endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "remember",
		Method:      http.MethodPost,
		Path:        "/v1/memories",
		Summary:     "Store a memory",
		Tags:        []string{"memories"},
	}, s.handleRemember)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-memories",
		Method:      http.MethodGet,
		Path:        "/v1/memories",
		Summary:     "List stored memories",
		Tags:        []string{"memories"},
	}, s.handleListMemories)

	huma.Register(s.api, huma.Operation{
		OperationID: "recall",
		Method:      http.MethodPost,
		Path:        "/v1/memories/recall",
		Summary:     "Recall memories relevant to a query",
		Tags:        []string{"memories"},
	}, s.handleRecall)

	huma.Register(s.api, huma.Operation{
		OperationID: "forget",
		Method:      http.MethodDelete,
		Path:        "/v1/memories/{id}",
		Summary:     "Delete a memory",
		Tags:        []string{"memories"},
	}, s.handleForget)

	// Policy cache endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "list-policy",
		Method:      http.MethodGet,
		Path:        "/v1/policy",
		Summary:     "List cached policy rules",
		Tags:        []string{"policy"},
	}, s.handleListPolicy)

	// Status endpoint
	huma.Register(s.api, huma.Operation{
		OperationID: "daemon-status",
		Method:      http.MethodGet,
		Path:        "/v1/status",
		Summary:     "Daemon status and telemetry counters",
		Tags:        []string{"system"},
	}, s.handleStatus)
}

// --- Request/Response types for huma ---

type turnStartInput struct {
	Body struct {
		Prompt string `json:"prompt" minLength:"1" doc:"The user prompt opening this turn"`
	}
}
type turnStartOutput struct {
	Body engine.TurnContext
}

type rememberInput struct {
	Body struct {
		Content string   `json:"content" minLength:"1" doc:"Memory content"`
		Type    string   `json:"type,omitempty" doc:"semantic, episodic, procedural, or preference"`
		Subject string   `json:"subject,omitempty" doc:"Optional subject the memory is about"`
		Tags    []string `json:"tags,omitempty" doc:"Optional tags"`
		AgentID string   `json:"agent_id,omitempty" doc:"Originating agent"`
		Source  string   `json:"source,omitempty" doc:"Where the memory came from"`
	}
}
type rememberOutput struct {
	Body recall.MemoryEntry
}

type listMemoriesInput struct {
	Subject string `query:"subject" doc:"Filter by subject"`
	Type    string `query:"type" doc:"Filter by memory type"`
	Tag     string `query:"tag" doc:"Filter by tag"`
	Limit   int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
	Offset  int    `query:"offset" minimum:"0" doc:"Page offset"`
}
type listMemoriesOutput struct {
	Body struct {
		Memories []recall.MemoryEntry `json:"memories"`
	}
}

type recallInput struct {
	Body struct {
		Query   string `json:"query,omitempty" doc:"Free-text query"`
		Subject string `json:"subject,omitempty" doc:"Scope the search to one subject"`
		Limit   int    `json:"limit,omitempty" minimum:"0" maximum:"100" doc:"Maximum results"`
	}
}
type recallOutput struct {
	Body struct {
		Entries      []recall.ScoredEntry `json:"entries"`
		GraphContext string               `json:"graph_context,omitempty"`
		Method       string               `json:"method"`
	}
}

type forgetInput struct {
	ID string `path:"id"`
}
type forgetOutput struct {
	Body struct {
		Deleted bool `json:"deleted"`
	}
}

type listPolicyOutput struct {
	Body struct {
		Rules []engine.PolicyRule `json:"rules"`
	}
}

type statusOutput struct {
	Body struct {
		Status    string                   `json:"status" example:"ok" doc:"Daemon status"`
		Memories  int64                    `json:"memories" doc:"Total stored memories"`
		Telemetry engine.TelemetrySnapshot `json:"telemetry"`
	}
}

// --- Handlers ---

func (s *Server) handleTurnStart(ctx context.Context, input *turnStartInput) (*turnStartOutput, error) {
	tc := s.services.Engine.OnTurnStart(ctx, input.Body.Prompt)
	return &turnStartOutput{Body: tc}, nil
}

func (s *Server) handleRemember(ctx context.Context, input *rememberInput) (*rememberOutput, error) {
	entry, err := s.services.Engine.Remember(ctx, recall.StoreRequest{
		Content: input.Body.Content,
		Type:    recall.ParseMemoryType(input.Body.Type),
		Subject: input.Body.Subject,
		Tags:    input.Body.Tags,
		AgentID: input.Body.AgentID,
		Source:  input.Body.Source,
	})
	if err != nil {
		if mnemoerr.IsInvalidInput(err) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("storing memory", err)
	}
	return &rememberOutput{Body: *entry}, nil
}

func (s *Server) handleListMemories(ctx context.Context, input *listMemoriesInput) (*listMemoriesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	memories, err := s.services.Memory.List(ctx, store.ListOpts{
		Subject: input.Subject,
		Type:    input.Type,
		Tag:     input.Tag,
		Limit:   limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing memories", err)
	}

	out := &listMemoriesOutput{}
	out.Body.Memories = memories
	if out.Body.Memories == nil {
		out.Body.Memories = []recall.MemoryEntry{}
	}
	return out, nil
}

func (s *Server) handleRecall(ctx context.Context, input *recallInput) (*recallOutput, error) {
	res, err := s.services.Memory.Recall(ctx, recall.Query{
		Text:    input.Body.Query,
		Subject: input.Body.Subject,
		Limit:   input.Body.Limit,
	})
	if err != nil {
		if mnemoerr.IsInvalidInput(err) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("recalling memories", err)
	}

	out := &recallOutput{}
	out.Body.Entries = res.Entries
	if out.Body.Entries == nil {
		out.Body.Entries = []recall.ScoredEntry{}
	}
	out.Body.GraphContext = res.GraphContext
	out.Body.Method = res.Method
	return out, nil
}

func (s *Server) handleForget(ctx context.Context, input *forgetInput) (*forgetOutput, error) {
	deleted, err := s.services.Engine.Forget(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError(fmt.Sprintf("deleting memory %q", input.ID), err)
	}
	if !deleted {
		return nil, huma.Error404NotFound(fmt.Sprintf("memory %q not found", input.ID))
	}

	out := &forgetOutput{}
	out.Body.Deleted = true
	return out, nil
}

func (s *Server) handleListPolicy(_ context.Context, _ *struct{}) (*listPolicyOutput, error) {
	out := &listPolicyOutput{}
	out.Body.Rules = s.services.Engine.PolicySnapshot()
	if out.Body.Rules == nil {
		out.Body.Rules = []engine.PolicyRule{}
	}
	return out, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	count, err := s.services.Memory.Count(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("counting memories", err)
	}

	out := &statusOutput{}
	out.Body.Status = "ok"
	out.Body.Memories = count
	out.Body.Telemetry = s.services.Engine.Telemetry()
	return out, nil
}
