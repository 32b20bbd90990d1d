// Package chat drives one tutoring turn end to end: persona routing, the
// remote thread/run lifecycle, message retrieval, and conversation
// persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studyhall-ai/tutord/internal/assistants"
	"github.com/studyhall-ai/tutord/internal/completion"
	"github.com/studyhall-ai/tutord/internal/events"
	"github.com/studyhall-ai/tutord/internal/persona"
	"github.com/studyhall-ai/tutord/internal/store"
)

// ErrRunTimeout is returned when a run is still not terminal at the poll
// deadline. The remote run itself is abandoned, not cancelled.
var ErrRunTimeout = errors.New("run did not reach a terminal status before the deadline")

// RunFailedError is returned for terminal non-success run statuses.
type RunFailedError struct {
	Status assistants.RunStatus
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run ended with status %q", e.Status)
}

// Provider is the slice of the assistants client the chat turn needs.
type Provider interface {
	CreateThread(ctx context.Context) (assistants.Thread, error)
	CreateMessage(ctx context.Context, threadID, role, content string) (assistants.Message, error)
	CreateRun(ctx context.Context, threadID, assistantID, instructions string) (assistants.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (assistants.Run, error)
	ListMessages(ctx context.Context, threadID string, orderAsc bool) ([]assistants.Message, error)
}

// Recorder is the conversation-store surface the chat turn needs.
type Recorder interface {
	Get(ctx context.Context, threadID string) (store.Conversation, error)
	Upsert(ctx context.Context, conv store.Conversation) error
}

// PersonaRouter picks the persona name for a prompt.
type PersonaRouter interface {
	Route(ctx context.Context, prompt, explicit string) (string, error)
}

type Request struct {
	Prompt        string
	ThreadID      string
	AssistantName string
	UserID        string
}

type Response struct {
	Messages    []store.Message  `json:"messages"`
	ThreadID    string           `json:"threadId"`
	Usage       assistants.Usage `json:"usage"`
	RunID       string           `json:"runId"`
	AssistantID string           `json:"assistantId"`
}

type Service struct {
	provider     Provider
	completions  completion.Completer
	registry     persona.Registry
	router       PersonaRouter
	recorder     Recorder
	events       *events.Client
	logger       *slog.Logger
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewService(provider Provider, completions completion.Completer, registry persona.Registry,
	router PersonaRouter, recorder Recorder, ev *events.Client, pollTimeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		provider:     provider,
		completions:  completions,
		registry:     registry,
		router:       router,
		recorder:     recorder,
		events:       ev,
		logger:       logger,
		pollInterval: time.Second,
		pollTimeout:  pollTimeout,
	}
}

// Respond runs one tutoring turn. The caller's thread id is reused verbatim
// when supplied; otherwise exactly one thread is created. Persistence
// failures are logged and never abort the response.
func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	personaName, err := s.router.Route(ctx, req.Prompt, req.AssistantName)
	if err != nil {
		return Response{}, fmt.Errorf("route persona: %w", err)
	}

	p, err := s.registry.Get(personaName)
	if err != nil {
		return Response{}, fmt.Errorf("resolve persona %q: %w", personaName, err)
	}
	instructions, err := persona.Resolve(p)
	if err != nil {
		return Response{}, fmt.Errorf("resolve persona %q: %w", personaName, err)
	}

	threadID := req.ThreadID
	if threadID == "" {
		thread, err := s.provider.CreateThread(ctx)
		if err != nil {
			return Response{}, fmt.Errorf("create thread: %w", err)
		}
		threadID = thread.ID
	}

	if _, err := s.provider.CreateMessage(ctx, threadID, "user", req.Prompt); err != nil {
		return Response{}, fmt.Errorf("append message: %w", err)
	}

	run, err := s.provider.CreateRun(ctx, threadID, p.ProviderID, instructions)
	if err != nil {
		return Response{}, fmt.Errorf("start run: %w", err)
	}

	run, err = s.awaitRun(ctx, threadID, run.ID)
	if err != nil {
		return Response{}, err
	}
	if run.Status != assistants.RunStatusCompleted {
		return Response{}, &RunFailedError{Status: run.Status}
	}

	raw, err := s.provider.ListMessages(ctx, threadID, true)
	if err != nil {
		return Response{}, fmt.Errorf("list messages: %w", err)
	}
	messages := normalize(raw)

	var usage assistants.Usage
	if run.Usage != nil {
		usage = *run.Usage
	}

	s.persist(ctx, threadID, run, messages, personaName, req.UserID)

	return Response{
		Messages:    messages,
		ThreadID:    threadID,
		Usage:       usage,
		RunID:       run.ID,
		AssistantID: personaName,
	}, nil
}

// awaitRun polls the run until it is terminal. The interval starts at one
// second and doubles up to eight; the overall deadline surfaces
// ErrRunTimeout, and ctx cancellation stops the loop.
func (s *Service) awaitRun(ctx context.Context, threadID, runID string) (assistants.Run, error) {
	deadline := time.Now().Add(s.pollTimeout)
	interval := s.pollInterval

	for {
		run, err := s.provider.GetRun(ctx, threadID, runID)
		if err != nil {
			return assistants.Run{}, fmt.Errorf("poll run: %w", err)
		}
		if run.Status.Terminal() {
			return run, nil
		}
		if time.Now().After(deadline) {
			return assistants.Run{}, fmt.Errorf("poll run %q: %w", runID, ErrRunTimeout)
		}

		select {
		case <-ctx.Done():
			return assistants.Run{}, ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if limit := 8 * s.pollInterval; interval > limit {
			interval = limit
		}
	}
}

func normalize(raw []assistants.Message) []store.Message {
	messages := make([]store.Message, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, store.Message{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			Role:      m.Role,
			Content:   m.Text(),
		})
	}
	return messages
}

// MergeUsage adds one run's usage to the per-thread history without ever
// dropping a prior run's entry.
func MergeUsage(existing map[string]assistants.Usage, runID string, usage assistants.Usage) map[string]assistants.Usage {
	merged := make(map[string]assistants.Usage, len(existing)+1)
	for id, u := range existing {
		merged[id] = u
	}
	merged[runID] = usage
	return merged
}

// TitleInput concatenates only the user-authored message texts, the material
// the title summarization is allowed to see.
func TitleInput(messages []store.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Role == "user" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

const titleInstructions = "Your job is to convert the following input messages into a 3-4 word theme, summarizing the information I was asking about."

func (s *Service) title(ctx context.Context, messages []store.Message) string {
	input := fmt.Sprintf("Here are the input messages: %s\nNow please provide a 3-4 word theme summarizing the information I was asking about.", TitleInput(messages))
	title, err := s.completions.Complete(ctx, titleInstructions, []completion.Turn{
		{Role: completion.RoleUser, Content: input},
	})
	if err != nil {
		s.logger.Warn("title summarization failed", "error", err)
		return ""
	}
	return strings.TrimSpace(title)
}

// persist merges the run's usage into the conversation record and upserts
// it. Failures are logged only; the chat response still goes out.
func (s *Service) persist(ctx context.Context, threadID string, run assistants.Run, messages []store.Message, personaName, userID string) {
	existing, err := s.recorder.Get(ctx, threadID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("load conversation failed", "thread_id", threadID, "error", err)
		return
	}

	createdAt := existing.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var usage assistants.Usage
	if run.Usage != nil {
		usage = *run.Usage
	}

	conv := store.Conversation{
		ThreadID:      threadID,
		Title:         s.title(ctx, messages),
		Messages:      messages,
		UsageHistory:  MergeUsage(existing.UsageHistory, run.ID, usage),
		AssistantName: personaName,
		UserID:        userID,
		CreatedAt:     createdAt,
	}
	if err := s.recorder.Upsert(ctx, conv); err != nil {
		s.logger.Error("persist conversation failed", "thread_id", threadID, "error", err)
		return
	}

	if err := s.events.Publish(events.SubjectConversationStored, map[string]any{
		"thread_id": threadID,
		"run_id":    run.ID,
		"persona":   personaName,
	}); err != nil {
		s.logger.Warn("publish conversation event failed", "thread_id", threadID, "error", err)
	}
}
