// internal/automation/conversation/orchestrator.go
package conversation

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/automation/executor"
	"taskpilot/internal/automation/intent"
	"taskpilot/internal/clients/assistant"
	"taskpilot/internal/models"
	"taskpilot/internal/session"
)

// minVisibleReply is the rune count below which a stripped reply is
// replaced by a canned acknowledgment, so the user never sees a blank
// bubble.
const minVisibleReply = 10

// Logger is the narrow logging interface the orchestrator needs.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Assistant is the remote completion collaborator.
type Assistant interface {
	Chat(ctx context.Context, req assistant.ChatRequest) (*assistant.ChatResponse, error)
}

// Orchestrator owns the rolling history, talks to the remote assistant,
// sanitizes its reply and hands suggested actions to the background
// executor.
type Orchestrator struct {
	assistant   Assistant
	matcher     *intent.Matcher
	executor    *executor.Executor
	history     *History
	sess        *session.Context
	log         Logger
	streamDelay time.Duration
}

func NewOrchestrator(
	remote Assistant,
	matcher *intent.Matcher,
	exec *executor.Executor,
	history *History,
	sess *session.Context,
	log Logger,
	streamDelay time.Duration,
) *Orchestrator {
	return &Orchestrator{
		assistant:   remote,
		matcher:     matcher,
		executor:    exec,
		history:     history,
		sess:        sess,
		log:         log,
		streamDelay: streamDelay,
	}
}

// Turn is what a single user message produced: the visible reply and
// the action handed to background execution, if any.
type Turn struct {
	Reply      string
	Action     action.Name
	Parameters *action.Bag
}

// HandleMessage runs one conversation turn. The user message is
// appended to history before the assistant call so the assistant sees
// the current turn plus the bounded window. Background execution is
// started before returning; its outcome arrives via the stream callback
// and lifecycle events after the reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, message string, stream executor.StreamFunc) (*Turn, error) {
	o.history.Append(models.RoleUser, message)

	snap := o.sess.Snapshot()

	resp, err := o.assistant.Chat(ctx, assistant.ChatRequest{
		Message:     message,
		History:     o.history.Entries(),
		WorkspaceID: snap.Workspace,
		ProjectID:   snap.Project,
	})
	if err != nil {
		// Terminal for the turn: no automation attempted.
		o.log.Warn("assistant call failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if !resp.Success {
		// A failed assistant turn never triggers automation, even when
		// the message itself would parse locally.
		o.log.Warn("assistant returned failure", map[string]interface{}{"error": resp.Error})
		visible := "Sorry, I could not process that request."
		o.history.Append(models.RoleAssistant, visible)
		o.streamWords(visible, stream)
		return &Turn{Reply: visible}, nil
	}

	visible := StripDirectives(resp.Message)

	var name action.Name
	var params *action.Bag
	if resp.Action != nil {
		name = action.Name(resp.Action.Name)
		params = resp.Action.Parameters
	} else if local := o.matcher.Parse(message, snap); local != nil {
		name = local.Action
		params = local.Parameters
	}
	if utf8.RuneCountInString(visible) < minVisibleReply {
		visible = cannedAcknowledgment(name)
	}

	o.history.Append(models.RoleAssistant, visible)
	o.streamWords(visible, stream)

	turn := &Turn{Reply: visible}
	if name != "" {
		turn.Action = name
		turn.Parameters = params
		o.executor.Execute(ctx, name, params, stream)
	}
	return turn, nil
}

// streamWords splits the visible reply into words and delivers them to
// the callback with small delays, simulating token-by-token arrival
// over a non-streaming transport.
func (o *Orchestrator) streamWords(text string, stream executor.StreamFunc) {
	if stream == nil {
		return
	}
	words := strings.Fields(text)
	for i, word := range words {
		if i > 0 {
			stream(" ")
			if o.streamDelay > 0 {
				time.Sleep(o.streamDelay)
			}
		}
		stream(word)
	}
}

// cannedAcknowledgment substitutes a short reply keyed by the suggested
// action when stripping left nothing worth showing.
func cannedAcknowledgment(name action.Name) string {
	switch name {
	case action.ListWorkspaces:
		return "Let me show you your available workspaces..."
	case action.CreateWorkspace:
		return "Creating that workspace for you..."
	case action.EditWorkspace:
		return "Updating the workspace..."
	case action.DeleteWorkspace:
		return "Deleting the workspace..."
	case action.ListProjects:
		return "Fetching the projects..."
	case action.CreateProject:
		return "Creating that project for you..."
	case action.CreateTask:
		return "Creating that task for you..."
	case action.FilterTasks:
		return "Looking up those tasks..."
	case action.Navigate:
		return "Taking you there..."
	case action.CheckAuth:
		return "Checking your session..."
	case action.Logout:
		return "Signing you out..."
	default:
		return "Working on it..."
	}
}
