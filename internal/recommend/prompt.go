package recommend

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

const defaultPrompt = `You are a licensed medical nutritionist and dermatologist.
Only provide supplement and healthy food recommendations for medically known and evidence-based treatments for {{.Condition}}.
{{if .Allergies}}
The user has the following allergies: {{.Allergies}}.
Please avoid recommending any supplements or foods that may trigger these allergies.
{{end}}
Use only well-known, established medical sources.
Do not add any disclaimers or explanations outside the JSON. Respond with only the JSON.

Format your response as JSON with this structure:
{
    "condition": "{{.Condition}}",
    "supplements": [
        {
            "name": "supplement name",
            "benefit": "how it helps with {{.Condition}}",
            "dosage": "recommended daily amount"
        }
    ],
    "healthy_foods": [
        {
            "name": "food name",
            "benefit": "how it helps with {{.Condition}}",
            "nutrients": "key nutrients that help"
        }
    ],
    "foods_to_avoid": [
        "food that may worsen {{.Condition}}"
    ]
}

Focus on evidence-based recommendations. Include 3-5 supplements and 5-7 healthy foods.
`

// promptData is the data passed to the prompt template.
type promptData struct {
	Condition string
	Allergies string
}

// DefaultTemplate returns the built-in recommendation prompt.
func DefaultTemplate() *template.Template {
	return template.Must(template.New("recommendation").Parse(defaultPrompt))
}

// LoadTemplate reads and parses a prompt template file. The template receives
// .Condition and .Allergies (already joined with ", ").
func LoadTemplate(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt template from %s: %w", path, err)
	}

	tmpl, err := template.New("recommendation").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return tmpl, nil
}

// buildPrompt renders tmpl for one request.
func buildPrompt(tmpl *template.Template, condition string, allergies []string) (string, error) {
	data := promptData{
		Condition: condition,
		Allergies: strings.Join(allergies, ", "),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// stripFence removes a leading ```json and a trailing ``` from the model's
// answer after trimming surrounding whitespace.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(text, "```")
	return text
}
