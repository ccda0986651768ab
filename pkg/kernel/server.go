package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/manthysbr/expense-agent/internal/config"
	"github.com/manthysbr/expense-agent/internal/core/domain"
	"github.com/manthysbr/expense-agent/internal/core/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	logger    *slog.Logger
	agent     *services.AgentService
	ledger    *services.LedgerService
	tools     *domain.ToolRegistry
	settings  *config.SettingsStore
	db        Pinger
	validator *requestValidator
}

// NewServer wires the HTTP API. settings may be nil, which disables /v1/settings.
func NewServer(
	logger *slog.Logger,
	agent *services.AgentService,
	ledger *services.LedgerService,
	tools *domain.ToolRegistry,
	settings *config.SettingsStore,
	db Pinger,
) (*Server, error) {
	validator, err := newRequestValidator(context.Background())
	if err != nil {
		return nil, err
	}
	return &Server{
		logger:    logger,
		agent:     agent,
		ledger:    ledger,
		tools:     tools,
		settings:  settings,
		db:        db,
		validator: validator,
	}, nil
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /v1/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /v1/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /v1/expenses/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("PUT /v1/budgets", s.handleSetBudget)
	mux.HandleFunc("GET /v1/tools", s.handleListTools)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /v1/settings", s.handleUpdateSettings)

	return s.validator.Middleware(mux)
}

// --- Health ---

// handleHealth pings the store.
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

// --- Agent ---

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type chatResponse struct {
	RunID         domain.RunID              `json:"run_id"`
	Answer        string                    `json:"answer"`
	Status        domain.LoopState          `json:"status"`
	AbortReason   string                    `json:"abort_reason,omitempty"`
	StepsTaken    int                       `json:"steps_taken"`
	ToolsUsed     []string                  `json:"tools_used"`
	ExecutionTime float64                   `json:"execution_time"`
	History       []domain.ConversationTurn `json:"history"`
}

func newChatResponse(rec domain.RunRecord) chatResponse {
	tools := rec.ToolsUsed
	if tools == nil {
		tools = []string{}
	}
	return chatResponse{
		RunID:         rec.ID,
		Answer:        rec.Answer(),
		Status:        rec.Status,
		AbortReason:   rec.AbortReason,
		StepsTaken:    rec.StepsTaken,
		ToolsUsed:     tools,
		ExecutionTime: rec.Duration.Seconds(),
		History:       rec.History,
	}
}

// handleChat runs the agent for one message. Aborted runs still answer 200 with
// status ABORTED; only an unreachable model is a gateway error.
// POST /v1/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.agent.Chat(r.Context(), req.UserID, req.Message)
	switch {
	case errors.Is(err, services.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrAgentBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, domain.ErrModelUnavailable):
		s.logger.Error("agent chat failed", "run_id", rec.ID, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.logger.Warn("agent run aborted", "run_id", rec.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, newChatResponse(rec))
}

// handleGetRun returns a recorded run.
// GET /v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.agent.Run(r.Context(), domain.RunID(id))
	if errors.Is(err, domain.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// --- Tools API ---

// toolDTO is the JSON representation of a tool.
type toolDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// handleListTools returns all registered tools with their schemas.
// GET /v1/tools
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	dtos := []toolDTO{}
	if s.tools != nil {
		for _, t := range s.tools.List() {
			dtos = append(dtos, toolDTO{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: json.RawMessage(t.InputSchema.JSON()),
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": dtos,
		"count": len(dtos),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
