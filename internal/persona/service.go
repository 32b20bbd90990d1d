package persona

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studyhall-ai/tutord/internal/assistants"
)

// Provider is the slice of the assistants client that persona creation needs.
type Provider interface {
	UploadFile(ctx context.Context, name string, contents []byte) (assistants.File, error)
	CreateAssistant(ctx context.Context, name, description, instructions string, fileIDs []string) (assistants.Assistant, error)
}

// FileInput is one reference document to attach to a new persona.
type FileInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Service creates personas: uploads reference files, registers the assistant
// with the provider and persists the record.
type Service struct {
	provider Provider
	registry Registry
	logger   *slog.Logger
}

func NewService(provider Provider, registry Registry, logger *slog.Logger) *Service {
	return &Service{provider: provider, registry: registry, logger: logger}
}

// Create uploads every reference file concurrently (all uploads must
// succeed; a failure leaves any already-uploaded files orphaned at the
// provider), then registers the assistant and persists the persona,
// overwriting any existing entry with the same name.
func (s *Service) Create(ctx context.Context, name, description, template string, files []FileInput) (Persona, error) {
	if err := ValidateTemplate(template); err != nil {
		return Persona{}, fmt.Errorf("create persona %q: %w", name, err)
	}

	fileIDs := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			uploaded, err := s.provider.UploadFile(gctx, f.Name, []byte(f.Content))
			if err != nil {
				return fmt.Errorf("upload %q: %w", f.Name, err)
			}
			fileIDs[i] = uploaded.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Persona{}, fmt.Errorf("create persona %q: %w", name, err)
	}

	instructions, err := Resolve(Persona{Instructions: template})
	if err != nil {
		return Persona{}, fmt.Errorf("create persona %q: %w", name, err)
	}

	assistant, err := s.provider.CreateAssistant(ctx, name, description, instructions, fileIDs)
	if err != nil {
		return Persona{}, fmt.Errorf("create persona %q: %w", name, err)
	}

	p := Persona{
		Name:         name,
		ProviderID:   assistant.ID,
		Description:  description,
		Instructions: template,
		FileIDs:      fileIDs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.registry.Put(p); err != nil {
		return Persona{}, fmt.Errorf("create persona %q: %w", name, err)
	}

	s.logger.Info("persona created",
		"persona", name,
		"assistant_id", assistant.ID,
		"files", len(fileIDs),
	)
	return p, nil
}
