package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// Matches ```json\n{...}\n``` and bare ``` fences; the newline is optional.
	codeFenceRe = regexp.MustCompile("(?s)`{3}(?:json|javascript|js)?\\s*\\n?(.*?)\\n?`{3}")

	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

	// Greedy so nested objects are captured whole.
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

var errEmptyReply = errors.New("empty reply")

// decodeReply unmarshals model output into v. Models wrap JSON in prose or
// code fences and leave trailing commas, so it tries in order: direct parse,
// fenced block, first-to-last brace span, and the span with trailing commas
// removed.
func decodeReply(text string, v any) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return errEmptyReply
	}

	candidates := []string{trimmed}
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if obj := objectRe.FindString(trimmed); obj != "" {
		candidates = append(candidates, obj, trailingCommaRe.ReplaceAllString(obj, "$1"))
	}

	var firstErr error
	for _, c := range candidates {
		err := json.Unmarshal([]byte(c), v)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return fmt.Errorf("reply is not JSON (%v): %s", firstErr, truncate(trimmed, 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
