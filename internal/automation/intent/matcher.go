// internal/automation/intent/matcher.go
package intent

import (
	"regexp"
	"strings"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/session"
)

// ParsedIntent is the matcher's single candidate interpretation of a
// message, or nothing.
type ParsedIntent struct {
	Action     action.Name
	Parameters *action.Bag
	Confidence float64
}

// Rule pairs a text-matching predicate with an action and a parameter
// extractor bound to the ambient context. Match returns the captures on
// success and nil otherwise, so the matching strategy stays swappable.
type Rule struct {
	Action     action.Name
	Confidence float64
	Match      func(text string) []string
	Extract    func(captures []string, ctx session.Snapshot) *action.Bag
}

// Matcher applies an ordered list of rules; the first match wins.
// Rules are ordered from most to least specific.
type Matcher struct {
	rules []Rule
}

func NewMatcher() *Matcher {
	return &Matcher{rules: defaultRules()}
}

// Parse returns the first rule's interpretation of the message, or nil
// when no rule matches. It never fails; a malformed message simply
// fails to match.
func (m *Matcher) Parse(message string, ctx session.Snapshot) *ParsedIntent {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil
	}
	for _, rule := range m.rules {
		captures := rule.Match(text)
		if captures == nil {
			continue
		}
		params := rule.Extract(captures, ctx)
		if params == nil {
			params = action.NewBag()
		}
		return &ParsedIntent{
			Action:     rule.Action,
			Parameters: params,
			Confidence: rule.Confidence,
		}
	}
	return nil
}

func regexRule(pattern string) func(string) []string {
	re := regexp.MustCompile(pattern)
	return func(text string) []string {
		return re.FindStringSubmatch(text)
	}
}

// trimOperand strips surrounding whitespace and quote characters from a
// captured operand.
func trimOperand(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func defaultRules() []Rule {
	return []Rule{
		{
			Action:     action.CreateTask,
			Confidence: 0.9,
			Match:      regexRule(`(?i)^create (?:a )?(?:new )?task (?:called|named|titled) (.+?)(?: in (?:project )?(.+?))?$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				bag := action.NewBag()
				bag.Set("workspaceSlug", "current")
				project := trimOperand(m[2])
				if project == "" {
					project = "current"
				}
				bag.Set("projectSlug", project)
				bag.Set("taskTitle", trimOperand(m[1]))
				return bag
			},
		},
		{
			Action:     action.FilterTasks,
			Confidence: 0.85,
			Match:      regexRule(`(?i)^(?:show|list) (?:me )?(?:all )?(high|medium|low) priority tasks$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				// Case normalization of the priority token is the
				// extractor's job, not the matcher's.
				return action.NewBag().
					Set("workspaceSlug", "current").
					Set("priority", strings.ToUpper(trimOperand(m[1])))
			},
		},
		{
			Action:     action.EditWorkspace,
			Confidence: 0.9,
			Match:      regexRule(`(?i)^rename (?:the )?workspace (.+?) to (.+)$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag().
					Set("workspaceSlug", trimOperand(m[1])).
					Set("name", trimOperand(m[2]))
			},
		},
		{
			Action:     action.CreateWorkspace,
			Confidence: 0.9,
			Match:      regexRule(`(?i)^create (?:a )?(?:new )?workspace (?:called|named) (.+?)(?: described as (.+?))?$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				bag := action.NewBag().Set("name", trimOperand(m[1]))
				if desc := trimOperand(m[2]); desc != "" {
					bag.Set("description", desc)
				}
				return bag
			},
		},
		{
			Action:     action.CreateProject,
			Confidence: 0.9,
			Match:      regexRule(`(?i)^create (?:a )?(?:new )?project (?:called|named) (.+?)(?: in (?:workspace )?(.+?))?$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				workspace := trimOperand(m[2])
				if workspace == "" {
					workspace = "current"
				}
				return action.NewBag().
					Set("workspaceSlug", workspace).
					Set("name", trimOperand(m[1]))
			},
		},
		{
			Action:     action.DeleteWorkspace,
			Confidence: 0.9,
			Match:      regexRule(`(?i)^delete (?:the )?workspace (.+)$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag().Set("workspaceSlug", trimOperand(m[1]))
			},
		},
		{
			Action:     action.ListProjects,
			Confidence: 0.85,
			Match:      regexRule(`(?i)^(?:show|list) (?:me )?(?:the |all |my )?projects(?: in (?:workspace )?(.+?))?$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				workspace := trimOperand(m[1])
				if workspace == "" {
					workspace = "current"
				}
				return action.NewBag().Set("workspaceSlug", workspace)
			},
		},
		{
			Action:     action.ListWorkspaces,
			Confidence: 0.85,
			Match:      regexRule(`(?i)^(?:show|list) (?:me )?(?:all |my )?workspaces$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag()
			},
		},
		{
			Action:     action.Navigate,
			Confidence: 0.8,
			Match:      regexRule(`(?i)^(?:go to|open|navigate to) (.+)$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag().Set("destination", trimOperand(m[1]))
			},
		},
		{
			Action:     action.CheckAuth,
			Confidence: 0.8,
			Match:      regexRule(`(?i)^am i (?:logged|signed) in\??$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag()
			},
		},
		{
			Action:     action.Logout,
			Confidence: 0.8,
			Match:      regexRule(`(?i)^(?:log|sign) ?out$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag()
			},
		},
		{
			// Generic shorthand; deliberately last so the specific task
			// creation rule above wins when both could match.
			Action:     action.CreateTask,
			Confidence: 0.6,
			Match:      regexRule(`(?i)^task: ?(.+)$`),
			Extract: func(m []string, ctx session.Snapshot) *action.Bag {
				return action.NewBag().
					Set("workspaceSlug", "current").
					Set("projectSlug", "current").
					Set("taskTitle", trimOperand(m[1]))
			},
		},
	}
}
