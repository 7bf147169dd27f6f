package remediation

import (
	"regexp"
	"strings"
)

// commandLineStart recognises a line that begins with a shell invocation.
var commandLineStart = regexp.MustCompile(`(?i)^\s*(?:\$|pip3?\b|python3?\b|python\s+-m\b|conda\b|git\b|` +
	`npm\b|npx\b|yarn\b|pnpm\b|sudo\b|apt(?:-get)?\b|brew\b|` +
	`curl\b|wget\b|powershell\b|cmd\s+/c\b|set\s+\w+|export\s+\w+|cd\s+)`)

var (
	fencedBlock = regexp.MustCompile("```(?:[a-zA-Z]+)?\\s*([\\s\\S]*?)```")
	inlineSpan  = regexp.MustCompile("`([^`]+)`")
)

// commandPattern is one invocation family recognised anywhere in text.
type commandPattern struct {
	family string
	re     *regexp.Regexp
}

// commandPatterns is evaluated top to bottom. Each expression has exactly one
// capture group holding the command.
var commandPatterns = []commandPattern{
	{"pip-install", regexp.MustCompile(`(?i)(pip3?\s+install\s+[A-Za-z0-9_.-]+)`)},
	{"python-module", regexp.MustCompile(`(?i)(python3?\s+-m\s+\S.+)`)},
	{"git", regexp.MustCompile(`(?i)(git\s+(?:clone|pull|checkout)\s+\S.+)`)},
	{"conda", regexp.MustCompile(`(?i)(conda\s+(?:create|install|activate|env\s+create)\s+\S.*)`)},
	{"npm", regexp.MustCompile(`(?i)(npm\s+(?:install|i)\s+\S.*)`)},
	{"yarn", regexp.MustCompile(`(?i)(yarn\s+(?:add|install)\s+\S.*)`)},
	{"pnpm", regexp.MustCompile(`(?i)(pnpm\s+(?:add|install)\s+\S.*)`)},
	{"sudo", regexp.MustCompile(`(?i)(sudo\s+\S.+)`)},
	{"apt", regexp.MustCompile(`(?i)(apt(?:-get)?\s+install\s+\S.+)`)},
	{"brew", regexp.MustCompile(`(?i)(brew\s+install\s+\S.+)`)},
	{"curl", regexp.MustCompile(`(?i)(curl\s+\S.+)`)},
	{"wget", regexp.MustCompile(`(?i)(wget\s+\S.+)`)},
	{"powershell", regexp.MustCompile(`(?i)(powershell\s+-[A-Za-z]\S*\s+\S.+)`)},
	{"cmd", regexp.MustCompile(`(?i)(cmd\s+/c\s+\S.+)`)},
}

// CommandFamily returns the first command family whose pattern occurs in s.
func CommandFamily(s string) (string, bool) {
	for _, p := range commandPatterns {
		if p.re.MatchString(s) {
			return p.family, true
		}
	}
	return "", false
}

// IsCommandLine reports whether s starts with a recognised shell invocation.
func IsCommandLine(s string) bool {
	return commandLineStart.MatchString(s)
}

// ExtractCommands pulls shell commands out of a blob that mixes prose and
// code. Four passes run in order (fenced blocks, inline code spans, patterns
// anywhere, whole lines) and the combined result keeps only the first
// occurrence of each distinct command.
func ExtractCommands(raw string) []string {
	if raw == "" {
		return nil
	}

	var candidates []string

	for _, m := range fencedBlock.FindAllStringSubmatch(raw, -1) {
		for _, line := range splitLines(m[1]) {
			s := strings.TrimSpace(line)
			if s == "" {
				continue
			}
			s = stripPrompt(s)
			if IsCommandLine(s) {
				candidates = append(candidates, s)
			}
		}
	}

	// Fenced regions are handled above; blank them so their fences are not
	// read as inline spans.
	unfenced := fencedBlock.ReplaceAllString(raw, "\n")
	for _, m := range inlineSpan.FindAllStringSubmatch(unfenced, -1) {
		s := stripPrompt(strings.TrimSpace(m[1]))
		if s == "" {
			continue
		}
		if _, ok := CommandFamily(s); ok || IsCommandLine(s) {
			candidates = append(candidates, s)
		}
	}

	for _, p := range commandPatterns {
		for _, m := range p.re.FindAllStringSubmatch(raw, -1) {
			if s := stripPrompt(strings.TrimSpace(m[1])); s != "" {
				candidates = append(candidates, s)
			}
		}
	}

	for _, line := range splitLines(raw) {
		s := stripPrompt(strings.TrimSpace(line))
		if IsCommandLine(s) {
			candidates = append(candidates, s)
		}
	}

	return dedupe(candidates)
}

func stripPrompt(s string) string {
	if strings.HasPrefix(s, "$") {
		return strings.TrimSpace(s[1:])
	}
	return s
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, "\r")
	}
	return lines
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
