package remediation

import (
	"regexp"
	"strings"
)

const (
	// MatchThreshold is the minimum score for attaching a command to a step.
	MatchThreshold = 0.25

	// keywordBonus is added once per shared domain keyword.
	keywordBonus = 0.25
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "to": {}, "and": {}, "of": {}, "in": {}, "on": {}, "for": {}, "a": {}, "an": {},
	"with": {}, "be": {}, "is": {}, "are": {}, "it": {}, "that": {}, "this": {}, "your": {},
	"you": {}, "if": {}, "then": {}, "by": {}, "as": {}, "from": {}, "using": {}, "use": {},
	"run": {}, "running": {}, "check": {}, "open": {}, "ensure": {}, "make": {}, "sure": {},
}

// bonusKeywords each add keywordBonus when present in both token sets.
var bonusKeywords = []string{"version", "install"}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if _, stop := stopWords[t]; stop {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// Score is the normalized-intersection similarity between a command and a
// step description, plus keyword bonuses.
func Score(command, step string) float64 {
	return score(tokenSet(command), tokenSet(step))
}

func score(cmd, step map[string]struct{}) float64 {
	if len(cmd) == 0 || len(step) == 0 {
		return 0
	}
	inter := 0
	for t := range cmd {
		if _, ok := step[t]; ok {
			inter++
		}
	}
	s := float64(inter) / float64(max(1, min(len(cmd), len(step))))
	for _, kw := range bonusKeywords {
		_, inCmd := cmd[kw]
		_, inStep := step[kw]
		if inCmd && inStep {
			s += keywordBonus
		}
	}
	return s
}

// BestStepFor returns the index of the step most similar to command. Ties keep
// the earliest step. ok is false when nothing reaches MatchThreshold.
func BestStepFor(command string, stepTexts []string) (idx int, ok bool) {
	cmd := tokenSet(command)
	if len(cmd) == 0 {
		return -1, false
	}
	best, bestScore := -1, 0.0
	for i, text := range stepTexts {
		step := tokenSet(text)
		if len(step) == 0 {
			continue
		}
		if s := score(cmd, step); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < MatchThreshold {
		return -1, false
	}
	return best, true
}
