// internal/automation/executor/executor.go
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/automation/dispatch"
	"taskpilot/internal/automation/events"
	"taskpilot/internal/automation/formatter"
	"taskpilot/internal/automation/resolver"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/models"
)

// Logger is the narrow logging interface the executor needs.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// StreamFunc receives chunks of the formatted outcome for a typed-out
// effect. May be nil when no streaming is wanted.
type StreamFunc func(chunk string)

// Transcript is where the formatted outcome is appended once execution
// completes; the conversation history implements it.
type Transcript interface {
	AppendToLast(text string)
}

// Metrics records terminal automation states. Implemented by the
// observability package; may be nil.
type Metrics interface {
	RecordAutomation(ctx context.Context, action, status string)
	RecordAutomationDuration(ctx context.Context, duration time.Duration, action, status string)
}

// Executor runs suggested actions in the background, decoupled from the
// request that triggered them. Outcomes are communicated via the
// streaming callback, the transcript and lifecycle events, never as a
// return value.
type Executor struct {
	registry    *action.Registry
	resolver    *resolver.Resolver
	dispatcher  *dispatch.Dispatcher
	bus         *events.Bus
	transcript  Transcript
	metrics     Metrics
	log         Logger
	streamDelay time.Duration

	wg sync.WaitGroup
}

func New(
	registry *action.Registry,
	res *resolver.Resolver,
	dispatcher *dispatch.Dispatcher,
	bus *events.Bus,
	transcript Transcript,
	metrics Metrics,
	log Logger,
	streamDelay time.Duration,
) *Executor {
	return &Executor{
		registry:    registry,
		resolver:    res,
		dispatcher:  dispatcher,
		bus:         bus,
		transcript:  transcript,
		metrics:     metrics,
		log:         log,
		streamDelay: streamDelay,
	}
}

// Execute runs the action asynchronously. Multiple automations may be
// in flight at once; each invocation is independent with its own
// lifecycle events, and the underlying actions are assumed independent.
func (e *Executor) Execute(ctx context.Context, name action.Name, params *action.Bag, stream StreamFunc) {
	id := uuid.NewString()

	e.bus.Publish(events.Event{
		ID:         id,
		Type:       events.AutomationStart,
		Action:     name,
		Parameters: params,
	})

	// Detach from the caller: the triggering request finishing or being
	// canceled must not abort an in-flight automation.
	runCtx := context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(runCtx, id, name, params, stream)
	}()
}

// Wait blocks until all in-flight automations finish. Used by tests and
// graceful shutdown.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) run(ctx context.Context, id string, name action.Name, params *action.Bag, stream StreamFunc) {
	started := time.Now()

	result, resolved := e.ExecuteAction(ctx, name, params)
	formatted := formatter.Format(result)

	e.streamText(formatted, stream)
	if e.transcript != nil {
		e.transcript.AppendToLast("\n\n" + formatted)
	}

	status := "success"
	if result.Success {
		e.bus.Publish(events.Event{
			ID:         id,
			Type:       events.AutomationSuccess,
			Action:     name,
			Parameters: resolved,
			Result:     result,
		})
		e.log.Info("automation succeeded", map[string]interface{}{
			"invocation": id,
			"action":     string(name),
		})
	} else {
		status = "error"
		// Error events carry the original pre-resolution parameters.
		e.bus.Publish(events.Event{
			ID:         id,
			Type:       events.AutomationError,
			Action:     name,
			Parameters: params,
			Error:      errorDetail(result),
		})
		e.log.Error("automation failed", map[string]interface{}{
			"invocation": id,
			"action":     string(name),
			"error":      errorDetail(result),
			"category":   apperrors.GetErrorCategory(apperrors.ErrorCode(result.Error)),
		})
	}

	if e.metrics != nil {
		e.metrics.RecordAutomation(ctx, string(name), status)
		e.metrics.RecordAutomationDuration(ctx, time.Since(started), string(name), status)
	}
}

// ExecuteAction validates, resolves and dispatches one action
// synchronously, returning the uniform result plus the resolved
// parameters. It never panics and never returns nil: every failure is
// converted to a failed result at this boundary.
func (e *Executor) ExecuteAction(ctx context.Context, name action.Name, params *action.Bag) (result *models.Result, resolved *action.Bag) {
	if params == nil {
		params = action.NewBag()
	}
	resolved = params

	if !e.registry.IsSupported(name) {
		return failResult(apperrors.NewUnsupportedActionError(string(name))), resolved
	}

	if missing := e.registry.MissingRequired(name, params); len(missing) > 0 {
		stdErr := apperrors.NewMissingParametersError(string(name), missing)
		return &models.Result{
			Success: false,
			Message: fmt.Sprintf("%s: %s", stdErr.Message, strings.Join(missing, ", ")),
			Error:   string(stdErr.Code),
		}, resolved
	}

	resolved = e.resolver.Resolve(ctx, params)
	args := action.PrepareArguments(name, resolved)

	result = e.dispatch(ctx, name, args)
	return result, resolved
}

// dispatch invokes the callable, converting panics and errors into
// failed results so the conversation loop can never crash.
func (e *Executor) dispatch(ctx context.Context, name action.Name, args []interface{}) (result *models.Result) {
	defer func() {
		if r := recover(); r != nil {
			stdErr := apperrors.NewDispatchFailedError(string(name), fmt.Errorf("panic: %v", r))
			e.log.Error("action panicked", map[string]interface{}{
				"action": string(name),
				"error":  stdErr.Details,
			})
			result = failResult(stdErr)
		}
	}()

	res, err := e.dispatcher.Dispatch(ctx, name, args)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		if stdErr.Code == apperrors.ErrCodeInternal {
			stdErr = apperrors.NewDispatchFailedError(string(name), err)
		}
		e.log.Error("action dispatch failed", map[string]interface{}{
			"action": string(name),
			"code":   string(stdErr.Code),
			"error":  stdErr.Details,
		})
		return failResult(stdErr)
	}
	if res == nil {
		return failResult(apperrors.NewDispatchFailedError(string(name), fmt.Errorf("nil result from dispatch")))
	}
	return res
}

// failResult projects a classified error onto the uniform result shape,
// keeping the code in the Error field for events, logs and metrics.
func failResult(stdErr *apperrors.StandardError) *models.Result {
	return &models.Result{
		Success: false,
		Message: stdErr.Message,
		Error:   string(stdErr.Code),
	}
}

// streamText delivers the formatted outcome word by word with small
// delays, emulating token-by-token arrival.
func (e *Executor) streamText(text string, stream StreamFunc) {
	if stream == nil {
		return
	}
	words := strings.Fields(text)
	for i, word := range words {
		if i > 0 {
			stream(" ")
			if e.streamDelay > 0 {
				time.Sleep(e.streamDelay)
			}
		}
		stream(word)
	}
}

func errorDetail(res *models.Result) string {
	if res.Error != "" {
		return res.Error
	}
	return res.Message
}
