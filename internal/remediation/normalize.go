package remediation

import (
	"fmt"
	"strings"
)

// CatchAllText is the description of a synthesized step that holds commands
// no existing step matched.
const CatchAllText = "Run the following commands/code:"

var catchAllPrefix = strings.ToLower(strings.TrimSuffix(CatchAllText, ":"))

// Normalize turns a parsed model response into the UI shape. Commands the
// model dumped into solution.code are redistributed onto the most similar
// steps. The input is never modified.
func Normalize(resp *ModelResponse) UIResult {
	if resp == nil {
		return UIResult{Status: StatusError, Message: "empty model response"}
	}
	if resp.Error != nil {
		return UIResult{Status: StatusError, Message: *resp.Error}
	}

	isTechnical := resp.IsTechnical()
	category := resp.Category()
	code := strings.TrimSpace(resp.solutionCode())

	b := newStepBuilder(resp.Steps)
	if code != "" {
		for _, cmd := range ExtractCommands(code) {
			b.attach(cmd)
		}
	}
	steps := b.render()

	summary := resp.Summary
	ui := UIResult{
		Status:        StatusOK,
		IsTechnical:   isTechnical,
		Category:      category,
		Summary:       &summary,
		Steps:         steps,
		Verify:        nonNil(resp.VerificationChecklist),
		AskMore:       nonNil(resp.RequestsForMoreInfo),
		CodeLanguage:  resp.codeLanguage(),
		Code:          &code,
		TicketPrefill: TicketPrefill(isTechnical, category, summary, steps),
	}

	if !isTechnical {
		ui.Summary = nil
		ui.Steps = []string{}
		ui.Verify = []string{}
		ui.CodeLanguage = nil
		ui.Code = nil
	}
	return ui
}

// TicketPrefill renders the plain-text block used to pre-populate a manual
// ticket form.
func TicketPrefill(isTechnical bool, category *string, summary string, steps []string) string {
	kind := "technical"
	if !isTechnical {
		kind = "non-technical"
	}
	cat := "unknown"
	if category != nil && *category != "" {
		cat = *category
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[AI Routing] type=%s; category=%s\n", kind, cat)
	fmt.Fprintf(&sb, "[Summary]\n%s\n", strings.TrimSpace(summary))
	sb.WriteString("[Steps]\n")
	for i, s := range steps {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + s)
	}
	return strings.TrimSpace(sb.String())
}

// RenderStep merges a step's commands into a single display line. ok is false
// for steps without text, which are dropped from the output.
func RenderStep(text string, commands []string) (line string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	cmds := make([]string, 0, len(commands))
	for _, c := range commands {
		if c = strings.TrimSpace(c); c != "" {
			cmds = append(cmds, c)
		}
	}
	if len(cmds) == 0 {
		return text, true
	}

	if strings.HasPrefix(strings.ToLower(text), catchAllPrefix) {
		return CatchAllText + "\n" + strings.Join(cmds, "\n"), true
	}

	quoted := make([]string, len(cmds))
	for i, c := range cmds {
		quoted[i] = "`" + c + "`"
	}
	joined := strings.Join(quoted, "; ")
	text = strings.TrimSuffix(text, ".")
	return text + " by running " + joined + ".", true
}

type builtStep struct {
	text     string
	commands []string
	// synthesized marks catch-all steps added during attachment; they are
	// never offered as match targets.
	synthesized bool
}

func (s *builtStep) add(cmd string) {
	for _, c := range s.commands {
		if c == cmd {
			return
		}
	}
	s.commands = append(s.commands, cmd)
}

// stepBuilder accumulates the working step list without touching the
// model's own slices.
type stepBuilder struct {
	steps []builtStep
}

func newStepBuilder(in []Step) *stepBuilder {
	b := &stepBuilder{steps: make([]builtStep, 0, len(in))}
	for _, s := range in {
		b.steps = append(b.steps, builtStep{
			text:     s.Text,
			commands: append([]string(nil), s.Commands...),
		})
	}
	return b
}

func (b *stepBuilder) matchTexts() []string {
	texts := make([]string, len(b.steps))
	for i, s := range b.steps {
		if !s.synthesized {
			texts[i] = s.text
		}
	}
	return texts
}

func (b *stepBuilder) attach(cmd string) {
	if i, ok := BestStepFor(cmd, b.matchTexts()); ok {
		b.steps[i].add(cmd)
		return
	}
	b.steps = append(b.steps, builtStep{
		text:        CatchAllText,
		commands:    []string{cmd},
		synthesized: true,
	})
}

func (b *stepBuilder) render() []string {
	out := make([]string, 0, len(b.steps))
	for _, s := range b.steps {
		if line, ok := RenderStep(s.text, s.commands); ok {
			out = append(out, line)
		}
	}
	return out
}

func nonNil(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
