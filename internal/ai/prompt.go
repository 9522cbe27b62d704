package ai

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"text/template"

	"github.com/fdg312/meal-e/internal/storage"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// Prompt renders the generation prompt with the pantry and preferences
// serialized as JSON.
type Prompt struct {
	tmpl *template.Template
}

// NewPrompt loads the template from path, or the built-in template when path is empty.
func NewPrompt(path string) (*Prompt, error) {
	text := defaultPromptTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template: %w", err)
		}
		text = string(data)
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

func (p *Prompt) Render(req PlanRequest) (string, error) {
	pantry := req.Pantry
	if pantry == nil {
		pantry = []storage.PlanIngredient{}
	}
	prefs := req.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}

	pantryJSON, err := json.Marshal(pantry)
	if err != nil {
		return "", fmt.Errorf("failed to encode pantry: %w", err)
	}
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("failed to encode preferences: %w", err)
	}

	var buf bytes.Buffer
	err = p.tmpl.Execute(&buf, map[string]string{
		"Pantry":      string(pantryJSON),
		"Preferences": string(prefsJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
