// Package persona manages the named tutor configurations: their stored
// instruction templates, attached reference files and provider-side
// assistant ids.
package persona

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNotFound is returned when a persona name is not in the registry.
var ErrNotFound = errors.New("persona not found")

// UnknownTemplateError marks an instruction placeholder that is not in the
// instruction library.
type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown instruction template %q", e.Name)
}

// Persona is one named tutor configuration. Instructions is the stored
// template; placeholders are expanded at resolve time so the instruction
// library can evolve without rewriting stored personas.
type Persona struct {
	Name         string    `json:"name"`
	ProviderID   string    `json:"provider_id"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	FileIDs      []string  `json:"file_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Resolve expands the persona's instruction template against the instruction
// library. A placeholder naming an unknown template fails with
// UnknownTemplateError rather than passing through verbatim.
func Resolve(p Persona) (string, error) {
	var unknown *UnknownTemplateError
	expanded := placeholderRe.ReplaceAllStringFunc(p.Instructions, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		text, ok := Library[name]
		if !ok {
			if unknown == nil {
				unknown = &UnknownTemplateError{Name: name}
			}
			return match
		}
		return text
	})
	if unknown != nil {
		return "", unknown
	}
	return expanded, nil
}

// ValidateTemplate checks that every placeholder in a template is known,
// so bad personas are rejected at creation rather than at first chat.
func ValidateTemplate(template string) error {
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if _, ok := Library[match[1]]; !ok {
			return &UnknownTemplateError{Name: match[1]}
		}
	}
	return nil
}
