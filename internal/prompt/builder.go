// Package prompt assembles classification prompts for the external language
// model. The prompt combines the static default category catalogue with the
// requesting user's custom categories and learned preferences.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/tallyhq/tally/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Section markers for the user-specific prompt blocks. A prompt built
// without user context contains neither.
const (
	CustomCategoriesMarker   = "USER CUSTOM CATEGORIES"
	LearnedPreferencesMarker = "LEARNED USER PREFERENCES"
)

// UserContext supplies the per-user inputs for prompt construction. The
// caller ranks Preferences (normally via the store's TopPreferences); the
// builder renders them in the order given and never re-sorts.
type UserContext struct {
	CustomCategories []model.Category
	Preferences      []model.CategoryPreference
}

// Builder renders classification prompts from embedded templates.
type Builder struct {
	templates map[string]*template.Template
}

// NewBuilder creates a Builder with all templates parsed.
func NewBuilder() (*Builder, error) {
	b := &Builder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		// Confidence is always rendered with one decimal place.
		"confidence": func(c float64) string { return fmt.Sprintf("%.1f", c) },
	}

	for _, name := range []string{"classification_prompt", "receipt_request"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(fmt.Sprintf("%s.tmpl", name)).Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		b.templates[name] = tmpl
	}

	return b, nil
}

// classificationData is the root object for classification_prompt.tmpl.
type classificationData struct {
	User                     *UserContext
	CustomCategoriesMarker   string
	LearnedPreferencesMarker string
	Defaults                 []model.DefaultCategory
}

// BuildClassificationPrompt produces the system/task prompt.
//
// With a nil user context the prompt contains only the static default
// catalogue, so classification degrades gracefully to generic behavior. With
// context, custom categories render before learned preferences: the model is
// instructed to prefer the user's own taxonomy over the defaults when both
// could apply.
func (b *Builder) BuildClassificationPrompt(userCtx *UserContext) (string, error) {
	data := classificationData{
		User:                     userCtx,
		Defaults:                 model.DefaultCatalogue,
		CustomCategoriesMarker:   CustomCategoriesMarker,
		LearnedPreferencesMarker: LearnedPreferencesMarker,
	}

	var buf bytes.Buffer
	if err := b.templates["classification_prompt"].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute classification prompt template: %w", err)
	}
	return buf.String(), nil
}

// receiptRequestData is the root object for receipt_request.tmpl.
type receiptRequestData struct {
	TaskPrompt string
	OCRText    string
}

// BuildReceiptRequest composes the full request for one receipt: the
// classification prompt, the expected JSON schema, and the raw OCR text as
// the document to classify.
func (b *Builder) BuildReceiptRequest(userCtx *UserContext, ocrText string) (string, error) {
	taskPrompt, err := b.BuildClassificationPrompt(userCtx)
	if err != nil {
		return "", err
	}

	data := receiptRequestData{
		TaskPrompt: taskPrompt,
		OCRText:    ocrText,
	}

	var buf bytes.Buffer
	if err := b.templates["receipt_request"].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute receipt request template: %w", err)
	}
	return buf.String(), nil
}
