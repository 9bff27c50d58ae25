// internal/automation/conversation/strip.go
package conversation

import (
	"regexp"
	"strings"
)

// bracketDirective matches embedded command tags like
// "[COMMAND: createTask]" or "[ACTION: listWorkspaces]".
var bracketDirective = regexp.MustCompile(`\[[A-Z][A-Z_]*:[^\]]*\]`)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// StripDirectives removes machine-directive syntax from an assistant
// reply: bracketed command tags and bare top-level JSON objects. The
// assistant is allowed to embed directives; the user must never see
// them.
func StripDirectives(reply string) string {
	out := bracketDirective.ReplaceAllString(reply, "")

	for _, candidate := range findJSONCandidates(out) {
		out = strings.Replace(out, candidate, "", 1)
	}

	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// findJSONCandidates scans for top-level JSON object candidates using a
// byte-level state machine that handles nested braces and string
// escaping. ASCII delimiters never appear inside UTF-8 multi-byte
// sequences, so byte iteration is safe.
func findJSONCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}

		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		if b == '"' {
			if depth > 0 {
				inString = true
			}
			continue
		}

		if b == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if b == '}' {
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
