// cmd/assistant/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/automation/conversation"
	"taskpilot/internal/automation/dispatch"
	"taskpilot/internal/automation/events"
	"taskpilot/internal/automation/executor"
	"taskpilot/internal/automation/intent"
	"taskpilot/internal/automation/resolver"
	"taskpilot/internal/clients/assistant"
	"taskpilot/internal/clients/platform"
	"taskpilot/internal/common/config"
	"taskpilot/internal/common/database"
	"taskpilot/internal/common/logger"
	"taskpilot/internal/common/observability"
	"taskpilot/internal/models"
	"taskpilot/internal/session"
	"taskpilot/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// chatSession bundles the per-session pipeline components.
type chatSession struct {
	orchestrator *conversation.Orchestrator
	executor     *executor.Executor
}

// sessionManager builds one pipeline per chat session on demand.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*chatSession

	cfg       *config.Config
	log       logger.Logger
	registry  *action.Registry
	matcher   *intent.Matcher
	bus       *events.Bus
	obs       *observability.Observability
	rdb       *database.RedisClient
	remote    *assistant.Client
	backend   *platform.Client
}

func (m *sessionManager) get(sessionID string) *chatSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s
	}

	sessLog := m.log.With(map[string]interface{}{"session": sessionID})
	sess := session.NewContext()
	orgs := session.NewOrgStore(m.rdb, sessionID)
	history := conversation.NewHistory(m.cfg.Conversation.HistorySize)

	res := resolver.New(sess, listerAdapter{m.backend}, orgs, m.cfg.Resolver.Timeout(), sessLog)
	dispatcher := dispatch.New(m.backend, sess, true)
	exec := executor.New(m.registry, res, dispatcher, m.bus, history, m.obs, sessLog, m.cfg.Conversation.StreamDelay())
	orch := conversation.NewOrchestrator(m.remote, m.matcher, exec, history, sess, sessLog, m.cfg.Conversation.StreamDelay())

	s := &chatSession{orchestrator: orch, executor: exec}
	m.sessions[sessionID] = s
	return s
}

// drain waits for every session's in-flight automations to finish. The
// session map is snapshotted under the lock so drain is safe against
// concurrent get calls.
func (m *sessionManager) drain() {
	m.mu.Lock()
	sessions := make([]*chatSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.executor.Wait()
	}
}

// listerAdapter narrows the platform client to the resolver's listing
// collaborator.
type listerAdapter struct {
	c *platform.Client
}

func (a listerAdapter) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	return a.c.ListWorkspacesData(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant pipeline...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	registry := action.NewRegistry()
	if path := os.Getenv("ACTION_CATALOG_PATH"); path != "" {
		loadRemoteCatalog(registry, path, zapLog)
	}

	bus := events.NewBus()
	go logEvents(bus, log)

	manager := &sessionManager{
		sessions: make(map[string]*chatSession),
		cfg:      cfg,
		log:      log,
		registry: registry,
		matcher:  intent.NewMatcher(),
		bus:      bus,
		obs:      obs,
		rdb:      rdb,
		remote:   assistant.NewClient(cfg.Assistant, log),
		backend:  platform.NewClient(cfg.Platform, log),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			SessionID string `json:"sessionId"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" {
			req.SessionID = "default"
		}

		s := manager.get(req.SessionID)
		turn, err := s.orchestrator.HandleMessage(r.Context(), req.Message, nil)
		if err != nil {
			http.Error(w, "assistant unavailable", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"reply": turn.Reply}
		if turn.Action != "" {
			resp["action"] = turn.Action
		}
		json.NewEncoder(w).Encode(resp)
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("server shutdown error", zap.Error(err))
	}

	// Let in-flight automations finish before exiting.
	manager.drain()
	zapLog.Info("Shutdown complete")
}

// loadRemoteCatalog merges server-declared actions into the registry.
func loadRemoteCatalog(registry *action.Registry, path string, log *zap.Logger) {
	cat, err := catalog.Load(path)
	if err != nil {
		log.Warn("action catalog load failed", zap.String("path", path), zap.Error(err))
		return
	}
	added := 0
	for _, entry := range cat.Actions {
		params := make([]action.Parameter, 0, len(entry.Parameters))
		for _, p := range entry.Parameters {
			params = append(params, action.Parameter{Name: p.Name, Required: p.Required})
		}
		if registry.RegisterRemote(action.Descriptor{
			Name:        action.Name(entry.Name),
			Description: entry.Description,
			Parameters:  params,
			Category:    entry.Category,
		}) {
			added++
		}
	}
	log.Info("action catalog merged", zap.String("version", cat.Version), zap.Int("added", added))
}

// logEvents mirrors lifecycle events into the structured log.
func logEvents(bus *events.Bus, log logger.Logger) {
	ch, cancel := bus.Subscribe()
	defer cancel()
	for ev := range ch {
		log.Info("automation event", map[string]interface{}{
			"id":     ev.ID,
			"type":   string(ev.Type),
			"action": string(ev.Action),
		})
	}
}
