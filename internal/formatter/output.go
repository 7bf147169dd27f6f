package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/triage/internal/remediation"
)

// Display writes a normalized result in the requested format: human, json
// or yaml. Unknown formats fall back to human.
func Display(w io.Writer, ui remediation.UIResult, format string) error {
	switch format {
	case "json":
		return displayJSON(w, ui)
	case "yaml":
		return displayYAML(w, ui)
	case "human":
		fallthrough
	default:
		displayHuman(w, ui)
	}
	return nil
}

func displayJSON(w io.Writer, ui remediation.UIResult) error {
	output, err := json.MarshalIndent(ui, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, ui remediation.UIResult) error {
	var v any = ui
	if ui.Status == remediation.StatusError {
		v = map[string]string{"status": ui.Status, "message": ui.Message}
	}
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, ui remediation.UIResult) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	if ui.Status == remediation.StatusError {
		red.Fprintln(w, "ERROR:")
		fmt.Fprintf(w, "   %s\n", ui.Message)
		return
	}

	kind := "technical"
	if !ui.IsTechnical {
		kind = "non-technical"
	}
	category := "unknown"
	if ui.Category != nil && *ui.Category != "" {
		category = *ui.Category
	}
	cyan.Fprintf(w, "ROUTING: %s / %s\n\n", kind, category)

	if ui.Summary != nil && *ui.Summary != "" {
		white.Fprintln(w, "SUMMARY:")
		fmt.Fprintln(w, wrapText(*ui.Summary, 80, "   "))
		fmt.Fprintln(w)
	}

	if len(ui.Steps) > 0 {
		green.Fprintln(w, "STEPS:")
		for i, step := range ui.Steps {
			lines := strings.Split(step, "\n")
			fmt.Fprintf(w, "   %d. %s\n", i+1, lines[0])
			for _, cmd := range lines[1:] {
				fmt.Fprintf(w, "      %s\n", color.CyanString(cmd))
			}
		}
		fmt.Fprintln(w)
	}

	if len(ui.Verify) > 0 {
		yellow.Fprintln(w, "VERIFY:")
		for _, v := range ui.Verify {
			fmt.Fprintf(w, "   [ ] %s\n", v)
		}
		fmt.Fprintln(w)
	}

	if len(ui.AskMore) > 0 {
		yellow.Fprintln(w, "WE NEED MORE INFO:")
		for _, q := range ui.AskMore {
			fmt.Fprintf(w, "   ? %s\n", q)
		}
		fmt.Fprintln(w)
	}

	if ui.Code != nil && *ui.Code != "" {
		lang := ""
		if ui.CodeLanguage != nil {
			lang = *ui.CodeLanguage
		}
		white.Fprintf(w, "CODE %s\n", lang)
		for _, line := range strings.Split(*ui.Code, "\n") {
			fmt.Fprintf(w, "   %s\n", color.CyanString(line))
		}
		fmt.Fprintln(w)
	}

	white.Fprintln(w, "TICKET PREFILL:")
	for _, line := range strings.Split(ui.TicketPrefill, "\n") {
		fmt.Fprintf(w, "   %s\n", line)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintln(w, color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder

	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		current := indent
		for _, word := range words {
			switch {
			case current == indent:
				current += word
			case len(current)+len(word)+1 > width:
				result.WriteString(current + "\n")
				current = indent + word
			default:
				current += " " + word
			}
		}
		result.WriteString(current + "\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}
