package recommend

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"compass-backend/internal/compass"
	"compass-backend/internal/scoring"
)

var (
	//go:embed prompts/compass.tmpl
	compassPromptText string
	//go:embed prompts/needs.tmpl
	needsPromptText string

	compassPrompt = template.Must(template.New("compass").Parse(compassPromptText))
	needsPrompt   = template.Must(template.New("needs").Parse(needsPromptText))
)

// PromptInput is everything embedded in a compass prompt.
type PromptInput struct {
	Selections scoring.Selections
	Scores     scoring.ScoreVector
	Catalog    *compass.Catalog
	// Nonce varies the prompt between otherwise identical requests. Empty
	// means a random one is generated.
	Nonce string
}

type promptSelection struct {
	Title string
	Value string
}

type promptScore struct {
	Label string
	Value int
}

type promptData struct {
	Nonce       string
	Selections  []promptSelection
	ModulesJSON string
	Scores      []promptScore
	Max         int
}

// BuildCompassPrompt renders the recommendation prompt. Every selection value
// appears verbatim.
func BuildCompassPrompt(in PromptInput) (string, error) {
	nonce := strings.TrimSpace(in.Nonce)
	if nonce == "" {
		nonce = uuid.NewString()
	}

	modules := []compass.ModuleSummary{}
	if in.Catalog != nil {
		modules = in.Catalog.ModuleSummaries(compass.CategoryAll)
	}
	modulesJSON, err := json.MarshalIndent(modules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode modules: %w", err)
	}

	data := promptData{
		Nonce:       nonce,
		ModulesJSON: string(modulesJSON),
		Max:         in.Scores.Max,
	}
	for _, dim := range scoring.Dimensions {
		title := string(dim)
		if in.Catalog != nil {
			title = in.Catalog.DimensionTitle(dim)
		}
		data.Selections = append(data.Selections, promptSelection{Title: title, Value: in.Selections[dim]})
	}
	for _, axis := range scoring.Axes {
		data.Scores = append(data.Scores, promptScore{Label: axis.Label(), Value: in.Scores.Get(axis)})
	}

	var sb strings.Builder
	if err := compassPrompt.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render compass prompt: %w", err)
	}
	return sb.String(), nil
}

// BuildNeedsPrompt renders the contact-form rewrite prompt.
func BuildNeedsPrompt(needs string) (string, error) {
	var sb strings.Builder
	if err := needsPrompt.Execute(&sb, strings.TrimSpace(needs)); err != nil {
		return "", fmt.Errorf("render needs prompt: %w", err)
	}
	return sb.String(), nil
}
