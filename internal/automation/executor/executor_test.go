// internal/automation/executor/executor_test.go
package executor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/automation/dispatch"
	"taskpilot/internal/automation/events"
	"taskpilot/internal/automation/resolver"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/common/logger"
	"taskpilot/internal/models"
	"taskpilot/internal/session"
)

// spyBackend records calls and returns scripted results. A non-nil
// gate blocks every call until it is closed, and the context error
// observed by the most recent call is retained.
type spyBackend struct {
	mu      sync.Mutex
	calls   []string
	ctxErr  error
	result  *models.Result
	err     error
	panicOn string
	gate    chan struct{}
}

func (s *spyBackend) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *spyBackend) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyBackend) lastCtxErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctxErr
}

func (s *spyBackend) respond(ctx context.Context, name string) (*models.Result, error) {
	s.record(name)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.ctxErr = ctx.Err()
	s.mu.Unlock()
	if s.panicOn == name {
		panic("backend exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return models.Ok(name+" ok", nil), nil
}

func (s *spyBackend) ListWorkspaces(ctx context.Context) (*models.Result, error) {
	return s.respond(ctx, "listWorkspaces")
}
func (s *spyBackend) CreateWorkspace(ctx context.Context, name, description string) (*models.Result, error) {
	return s.respond(ctx, "createWorkspace")
}
func (s *spyBackend) UpdateWorkspace(ctx context.Context, slug string, fields map[string]interface{}) (*models.Result, error) {
	return s.respond(ctx, "editWorkspace")
}
func (s *spyBackend) DeleteWorkspace(ctx context.Context, slug string) (*models.Result, error) {
	return s.respond(ctx, "deleteWorkspace")
}
func (s *spyBackend) ListProjects(ctx context.Context, workspaceSlug string) (*models.Result, error) {
	return s.respond(ctx, "listProjects")
}
func (s *spyBackend) CreateProject(ctx context.Context, workspaceSlug, name, description string) (*models.Result, error) {
	return s.respond(ctx, "createProject")
}
func (s *spyBackend) CreateTask(ctx context.Context, workspaceSlug, projectSlug, title string, options map[string]interface{}) (*models.Result, error) {
	return s.respond(ctx, "createTask")
}
func (s *spyBackend) FilterTasks(ctx context.Context, workspaceSlug string, filters map[string]interface{}) (*models.Result, error) {
	return s.respond(ctx, "filterTasks")
}
func (s *spyBackend) CheckAuth(ctx context.Context) (*models.Result, error) {
	return s.respond(ctx, "checkAuth")
}
func (s *spyBackend) Logout(ctx context.Context) (*models.Result, error) {
	return s.respond(ctx, "logout")
}
func (s *spyBackend) Invoke(ctx context.Context, name string, args []interface{}) (*models.Result, error) {
	return s.respond(ctx, "invoke:" + name)
}

type fakeTranscript struct {
	mu      sync.Mutex
	patches []string
}

func (f *fakeTranscript) AppendToLast(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, text)
}

func (f *fakeTranscript) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.patches...)
}

type testHarness struct {
	executor   *Executor
	backend    *spyBackend
	bus        *events.Bus
	transcript *fakeTranscript
	sess       *session.Context
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	backend := &spyBackend{}
	sess := session.NewContext()
	log := logger.NewNoOpLogger()

	res := resolver.New(sess, nil, nil, 100*time.Millisecond, log)
	dispatcher := dispatch.New(backend, sess, false)
	bus := events.NewBus()
	transcript := &fakeTranscript{}

	exec := New(action.NewRegistry(), res, dispatcher, bus, transcript, nil, log, 0)
	return &testHarness{
		executor:   exec,
		backend:    backend,
		bus:        bus,
		transcript: transcript,
		sess:       sess,
	}
}

func TestExecuteActionSuccess(t *testing.T) {
	h := newHarness(t)

	bag := action.NewBag().Set("name", "Acme").Set("description", "Our company")
	result, resolved := h.executor.ExecuteAction(context.Background(), action.CreateWorkspace, bag)

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"createWorkspace"}, h.backend.called())
	assert.Equal(t, "Acme", resolved.GetString("name"))
}

func TestExecuteActionUnsupportedSkipsDispatch(t *testing.T) {
	h := newHarness(t)

	result, _ := h.executor.ExecuteAction(context.Background(), "sendEmail", action.NewBag())

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Unsupported action 'sendEmail'")
	assert.Equal(t, string(apperrors.ErrCodeUnsupportedAction), result.Error)
	assert.Empty(t, h.backend.called(), "unsupported actions must never reach the backend")
}

func TestExecuteActionMissingParametersNamesKeys(t *testing.T) {
	h := newHarness(t)

	bag := action.NewBag().Set("taskTitle", "Fix login bug")
	result, _ := h.executor.ExecuteAction(context.Background(), action.CreateTask, bag)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "createTask")
	assert.Contains(t, result.Message, "workspaceSlug")
	assert.Contains(t, result.Message, "projectSlug")
	assert.Equal(t, string(apperrors.ErrCodeMissingRequiredParameters), result.Error)
	assert.Empty(t, h.backend.called())
}

func TestExecuteActionNilBag(t *testing.T) {
	h := newHarness(t)

	result, resolved := h.executor.ExecuteAction(context.Background(), action.ListWorkspaces, nil)

	require.NotNil(t, result)
	assert.True(t, result.Success)
	require.NotNil(t, resolved)
	assert.Equal(t, []string{"listWorkspaces"}, h.backend.called())
}

func TestExecuteActionResolvesPlaceholders(t *testing.T) {
	h := newHarness(t)
	h.sess.Apply(session.Update{
		Workspace: session.Str("acme"),
		Project:   session.Str("website"),
	})

	bag := action.NewBag().
		Set("workspaceSlug", "current").
		Set("projectSlug", "current").
		Set("taskTitle", "Fix login bug")

	result, resolved := h.executor.ExecuteAction(context.Background(), action.CreateTask, bag)

	assert.True(t, result.Success)
	assert.Equal(t, "acme", resolved.GetString("workspaceSlug"))
	assert.Equal(t, "website", resolved.GetString("projectSlug"))
}

func TestExecuteActionBackendErrorBecomesFailedResult(t *testing.T) {
	h := newHarness(t)
	h.backend.err = assert.AnError

	result, _ := h.executor.ExecuteAction(context.Background(), action.Logout, action.NewBag())

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Action 'logout' failed")
	assert.Equal(t, string(apperrors.ErrCodeDispatchFailed), result.Error)
}

func TestExecuteActionClassifiedErrorKeepsCode(t *testing.T) {
	h := newHarness(t)
	h.backend.err = apperrors.NewPlatformTimeoutError("POST /auth/logout")

	result, _ := h.executor.ExecuteAction(context.Background(), action.Logout, action.NewBag())

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, string(apperrors.ErrCodePlatformTimeout), result.Error)
}

func TestExecuteActionPanicRecovered(t *testing.T) {
	h := newHarness(t)
	h.backend.panicOn = "checkAuth"

	var result *models.Result
	require.NotPanics(t, func() {
		result, _ = h.executor.ExecuteAction(context.Background(), action.CheckAuth, action.NewBag())
	})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, string(apperrors.ErrCodeDispatchFailed), result.Error)
}

func TestExecuteActionNotImplementedWithoutPassthrough(t *testing.T) {
	h := newHarness(t)

	// A remotely registered action with no dispatch entry and the
	// pass-through disabled is a configuration defect.
	reg := action.NewRegistry()
	reg.RegisterRemote(action.Descriptor{Name: "archiveWorkspace"})
	h.executor.registry = reg

	result, _ := h.executor.ExecuteAction(context.Background(), "archiveWorkspace", action.NewBag())

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Empty(t, h.backend.called())
}

func TestExecuteOutlivesCallerContext(t *testing.T) {
	h := newHarness(t)
	h.backend.gate = make(chan struct{})
	ch, cancelSub := h.bus.Subscribe()
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	h.executor.Execute(ctx, action.Logout, action.NewBag(), nil)

	// Cancel the triggering context before the backend call proceeds;
	// the automation must still run to a successful completion.
	cancel()
	close(h.backend.gate)
	h.executor.Wait()

	assert.Equal(t, []string{"logout"}, h.backend.called())
	assert.NoError(t, h.backend.lastCtxErr(), "background work must not inherit the caller's cancellation")

	<-ch // start
	terminal := <-ch
	assert.Equal(t, events.AutomationSuccess, terminal.Type)
}

func TestExecutePublishesLifecycleEvents(t *testing.T) {
	h := newHarness(t)
	ch, cancel := h.bus.Subscribe()
	defer cancel()

	bag := action.NewBag().Set("name", "Acme")
	h.executor.Execute(context.Background(), action.CreateWorkspace, bag, nil)
	h.executor.Wait()

	start := <-ch
	assert.Equal(t, events.AutomationStart, start.Type)
	assert.Equal(t, action.CreateWorkspace, start.Action)
	assert.NotEmpty(t, start.ID)

	terminal := <-ch
	assert.Equal(t, events.AutomationSuccess, terminal.Type)
	assert.Equal(t, start.ID, terminal.ID, "both events share the invocation id")
	require.NotNil(t, terminal.Result)
	assert.True(t, terminal.Result.Success)
}

func TestExecuteErrorEventCarriesOriginalParameters(t *testing.T) {
	h := newHarness(t)
	h.backend.err = assert.AnError
	ch, cancel := h.bus.Subscribe()
	defer cancel()

	// "Marketing Team" resolves to a generated slug before dispatch; the
	// error event must still carry the value the user provided.
	bag := action.NewBag().Set("workspaceSlug", "Marketing Team")
	h.executor.Execute(context.Background(), action.DeleteWorkspace, bag, nil)
	h.executor.Wait()

	<-ch // start
	errEvent := <-ch
	assert.Equal(t, events.AutomationError, errEvent.Type)
	assert.NotEmpty(t, errEvent.Error)
	assert.Equal(t, "Marketing Team", errEvent.Parameters.GetString("workspaceSlug"))
}

func TestExecutePatchesTranscript(t *testing.T) {
	h := newHarness(t)

	h.executor.Execute(context.Background(), action.Logout, action.NewBag(), nil)
	h.executor.Wait()

	patches := h.transcript.all()
	require.Len(t, patches, 1)
	assert.True(t, strings.HasPrefix(patches[0], "\n\n"))
	assert.Contains(t, patches[0], "✅")
}

func TestExecuteStreamsFormattedOutcome(t *testing.T) {
	h := newHarness(t)

	var mu sync.Mutex
	var chunks []string
	stream := func(chunk string) {
		mu.Lock()
		defer mu.Unlock()
		chunks = append(chunks, chunk)
	}

	h.executor.Execute(context.Background(), action.CheckAuth, action.NewBag(), stream)
	h.executor.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, chunks)
	joined := strings.Join(chunks, "")
	assert.Contains(t, joined, "checkAuth ok")
}
