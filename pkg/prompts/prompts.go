package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Script ScriptPrompts `yaml:"script"`
}

type SystemPrompts struct {
	Script  string `yaml:"script"`
	Moments string `yaml:"moments"`
}

type ScriptPrompts struct {
	Generate string `yaml:"generate"`
	Moments  string `yaml:"moments"`
}

type ScriptParams struct {
	Subject string
	Sport   string
	Extra   string
}

type MomentsParams struct {
	Subject string
	Sport   string
	Script  string
	Count   int
}

// Default returns the built-in prompt set.
func Default() *Prompts {
	return &Prompts{
		System: SystemPrompts{
			Script: "You are a professional sports historian and scriptwriter. " +
				"Create an engaging, factual script about a sports celebrity's history. " +
				"The script should be 60-90 seconds when read aloud (approximately 150-225 words). " +
				"Focus on key career highlights, achievements, and interesting facts. " +
				"Use a conversational, engaging tone suitable for a video reel. " +
				"Do not include any introductions like \"Welcome to\" or \"Today we're looking at\". " +
				"Start directly with the celebrity's name and their significance.",
			Moments: "You extract key moments from sports scripts and return them as JSON.",
		},
		Script: ScriptPrompts{
			Generate: "Create a script about {{.Subject}}, who is known for {{.Sport}}. " +
				"{{if .Extra}}Additional information to include: {{.Extra}}. {{end}}" +
				"The script should be factually accurate and highlight their career achievements.",
			Moments: "Extract {{.Count}} key moments or achievements from this script about {{.Subject}} in {{.Sport}}. " +
				"Format each moment as a short, searchable phrase that could be used to find an image. " +
				"Return a JSON object with a \"moments\" array of {{.Count}} strings.\n\nScript:\n{{.Script}}",
		},
	}
}

// Load returns the built-in prompts, overridden by prompts.yaml when one
// exists in the working directory.
func Load() (*Prompts, error) {
	p := Default()

	data, err := os.ReadFile(defaultPromptsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderScript(params ScriptParams) (string, error) {
	return render(p.Script.Generate, params)
}

func (p *Prompts) RenderMoments(params MomentsParams) (string, error) {
	return render(p.Script.Moments, params)
}

func render(text string, params any) (string, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return buf.String(), nil
}
