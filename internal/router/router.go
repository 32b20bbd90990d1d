// Package router picks the persona for an incoming prompt: the explicit name
// when supplied, otherwise a single classification completion over the
// registry's names.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studyhall-ai/tutord/internal/completion"
	"github.com/studyhall-ai/tutord/internal/persona"
)

// UnknownPersonaError marks a classifier answer that is not a registered
// persona name.
type UnknownPersonaError struct {
	Answer string
}

func (e *UnknownPersonaError) Error() string {
	return fmt.Sprintf("classifier answered with unknown persona %q", e.Answer)
}

type Router struct {
	completions completion.Completer
	registry    persona.Registry
	logger      *slog.Logger
}

func New(completions completion.Completer, registry persona.Registry, logger *slog.Logger) *Router {
	return &Router{completions: completions, registry: registry, logger: logger}
}

// Route returns the persona name to run the prompt against. An explicit name
// short-circuits with zero completions; whether it exists is checked by the
// later registry lookup, not here.
func (r *Router) Route(ctx context.Context, prompt, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return r.Classify(ctx, prompt)
}

// Classify issues one completion listing every registered persona name and
// validates the answer against that set. An out-of-vocabulary answer fails
// fast instead of becoming an opaque lookup miss downstream.
func (r *Router) Classify(ctx context.Context, prompt string) (string, error) {
	names, err := r.registry.Names()
	if err != nil {
		return "", fmt.Errorf("classify persona: %w", err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("classify persona: registry is empty")
	}

	input := "Help me decide which assistant to use for the following conversation: " +
		prompt +
		"\nRespond with just the exact text of one of the following: " +
		strings.Join(names, ", ")

	answer, err := r.completions.Complete(ctx, "", []completion.Turn{
		{Role: completion.RoleUser, Content: input},
	})
	if err != nil {
		return "", fmt.Errorf("classify persona: %w", err)
	}

	answer = strings.TrimSpace(answer)
	for _, name := range names {
		if answer == name {
			r.logger.Info("persona classified", "persona", name)
			return name, nil
		}
	}
	return "", &UnknownPersonaError{Answer: answer}
}
