package chat

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/tutorwise/errors"
)

const (
	SystemInstruction = "You are TutorWise, an AI tutor that answers user questions using only information from the provided context. " +
		"If the context does not contain the answer, say you don't know instead of inventing one."

	DefaultHistoryTurns = 6
)

var (
	//go:embed data/prompt.md.tmpl
	promptTmplText string
	promptTmpl     = template.Must(template.New("prompt").Funcs(funcMap()).Parse(promptTmplText))
)

type PromptValues struct {
	System   string
	Snippets []string
	History  []Message
	Message  string
}

func funcMap() template.FuncMap {
	return sprig.TxtFuncMap()
}

// BuildPrompt renders the system instruction, the numbered snippets, the
// last historyTurns turns and the user message, in that order.
func BuildPrompt(values PromptValues, historyTurns int) (string, error) {
	if values.System == "" {
		values.System = SystemInstruction
	}
	if historyTurns >= 0 && len(values.History) > historyTurns {
		values.History = values.History[len(values.History)-historyTurns:]
	}

	var sb strings.Builder
	if err := promptTmpl.Execute(&sb, values); err != nil {
		return "", errors.Wrapf(err, "failed to render prompt")
	}
	return strings.TrimSpace(sb.String()), nil
}
