package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sozercan/genome-workbench/internal/render"
)

const narratorPrompt = `You explain genomics model predictions to biologists.
You are given the summary metrics of one prediction. Describe in two or three plain sentences what the numbers show.
Only use the numbers given. Do not speculate about biological mechanism and do not give medical advice.`

// maxPromptLen bounds the metrics text sent to the model.
const maxPromptLen = 4000

// Narrator writes a short plain-language summary of a rendered result.
type Narrator struct {
	provider Provider
}

func NewNarrator(p Provider) *Narrator {
	return &Narrator{provider: p}
}

func (n *Narrator) Summarize(ctx context.Context, res *render.Result) (string, error) {
	if res == nil {
		return "", errors.New("nothing to summarize")
	}
	prompt := describe(res)
	slog.Debug("Requesting result narration", "action", res.Action, "promptLength", len(prompt))

	resp, err := n.provider.Complete(ctx, narratorPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("narration failed: %w", err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", errors.New("narration came back empty")
	}
	slog.Debug("Narration completed", "tokens", resp.Usage.TotalTokens)
	return text, nil
}

// describe renders the result's headline numbers as plain text.
func describe(res *render.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis: %s\n", res.Title)
	if res.Subtitle != "" {
		fmt.Fprintf(&b, "Subject: %s\n", res.Subtitle)
	}
	if res.Metadata.Interval != "" {
		fmt.Fprintf(&b, "Interval: %s\n", res.Metadata.Interval)
	}
	if res.Metadata.Organism != "" {
		fmt.Fprintf(&b, "Organism: %s\n", res.Metadata.Organism)
	}
	for _, s := range res.Sections {
		if len(s.Metrics) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", s.Title)
		for _, m := range s.Metrics {
			fmt.Fprintf(&b, "- %s: %s\n", m.Label, m.Value)
		}
	}
	out := b.String()
	if len(out) > maxPromptLen {
		out = out[:maxPromptLen] + "\n[truncated]"
	}
	return out
}
