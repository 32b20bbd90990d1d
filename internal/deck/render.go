package deck

import (
	"context"
	"fmt"
	"html/template"
	"os"
)

// DeckFileName is the fixed artifact name inside a request's working directory.
const DeckFileName = "deck.html"

var deckTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Course Deck</title>
<style>
.slide { page-break-after: always; border: 1px solid #ccc; margin: 2em; padding: 2em; }
.slide h1 { font-size: 1.6em; }
.slide img { max-width: 360px; display: block; margin-top: 1em; }
.slide pre { white-space: pre-wrap; font-family: inherit; }
</style>
</head>
<body>
{{range .}}<section class="slide">
<h1>{{.Title}}</h1>
<pre>{{.Content}}</pre>
<img src="{{.Image}}" alt="{{.ImageIdea}}">
</section>
{{end}}</body>
</html>
`))

type renderedSlide struct {
	Title     string
	Content   string
	ImageIdea string
	Image     template.URL
}

type Renderer struct {
	images ImageSource
}

func NewRenderer(images ImageSource) *Renderer {
	if images == nil {
		images = PlaceholderSource{}
	}
	return &Renderer{images: images}
}

// Render writes the deck file: one page per slide with a title region, a
// body region, and either a resolved image or the placeholder.
func (r *Renderer) Render(ctx context.Context, slides []Slide, path string) error {
	pages := make([]renderedSlide, 0, len(slides))
	for _, s := range slides {
		img, err := r.images.Resolve(ctx, s.ImageIdea)
		if err != nil || img == "" {
			img = placeholderImage
		}
		pages = append(pages, renderedSlide{
			Title:     s.Title,
			Content:   s.Content,
			ImageIdea: s.ImageIdea,
			Image:     template.URL(img),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render deck: %w", err)
	}
	defer f.Close()

	if err := deckTemplate.Execute(f, pages); err != nil {
		return fmt.Errorf("render deck: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render deck: %w", err)
	}
	return nil
}
