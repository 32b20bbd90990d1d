// Package deck turns the slide-plan artifact into structured slides and
// renders them as a deck file.
package deck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhall-ai/tutord/internal/completion"
)

// Slide is one rendered page of the deck.
type Slide struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageIdea string `json:"imageIdea"`
}

type slideList struct {
	Slides []Slide `json:"slides"`
}

type Formatter struct {
	completions completion.Completer
	logger      *slog.Logger
}

func NewFormatter(completions completion.Completer, logger *slog.Logger) *Formatter {
	return &Formatter{completions: completions, logger: logger}
}

// FormatForSlides reformats a markdown slide plan into structured slide
// records with one schema-constrained completion.
func (f *Formatter) FormatForSlides(ctx context.Context, markdown string) ([]Slide, error) {
	turns := []completion.Turn{{
		Role: completion.RoleUser,
		Content: "Convert the following slide plan into slide records. For each slide give its title, its body content, and an idea for an illustrative image.\n\n" +
			markdown,
	}}
	var out slideList
	if _, err := completion.CompleteJSON(ctx, f.completions, "SlideDeck", "", turns, &out); err != nil {
		return nil, fmt.Errorf("format for slides: %w", err)
	}
	f.logger.Info("slide plan formatted", "slides", len(out.Slides))
	return out.Slides, nil
}
