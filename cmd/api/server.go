package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tharaga/auth"
	"tharaga/event"
	"tharaga/lead"
	"tharaga/persona"
	"tharaga/property"
	"tharaga/readiness"
	"tharaga/workflow"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyRole   ctxKey = "role"
)

type eventTracker interface {
	Track(ctx context.Context, params event.TrackParams) (event.Signal, error)
}

type readinessEvaluator interface {
	Evaluate(ctx context.Context, buyerID, propertyID string) (readiness.Result, error)
}

type personaClassifier interface {
	Classify(ctx context.Context, buyerID string) (persona.Classification, error)
}

type workflowDispatcher interface {
	Dispatch(ctx context.Context, params workflow.DispatchParams) (workflow.DispatchRecord, error)
}

type retryProcessor interface {
	Process(ctx context.Context) (workflow.RetryStats, error)
}

// Server wires the automation services to the HTTP surface.
type Server struct {
	authService     *auth.Service
	eventService    eventTracker
	evaluator       readinessEvaluator
	classifier      personaClassifier
	workflowService workflowDispatcher
	retryQueue      retryProcessor
	cronSecret      string
	logger          *slog.Logger
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/behavioral/track", s.requireAuth(s.handleTrack))
	mux.HandleFunc("/api/behavioral/readiness", s.requireAuth(s.handleReadiness))
	mux.HandleFunc("/api/behavioral/classify", s.requireAuth(s.handleClassify))
	mux.HandleFunc("/api/workflows/trigger", s.requireAuth(s.handleTriggerWorkflow))
	mux.HandleFunc("/api/workflows/retry-queue", s.handleRetryQueue)
	return s.logRequests(mux)
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// requireAuth validates the bearer token and stashes user id and role on the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authService == nil {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token", "")
			return
		}

		userID, role, err := s.authService.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token", "")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		ctx = context.WithValue(ctx, ctxKeyRole, role)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered", "")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error(), "")
		default:
			writeError(w, http.StatusBadRequest, "registration failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := s.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user": map[string]any{
			"id":        result.User.ID,
			"email":     result.User.Email,
			"full_name": result.User.FullName,
			"role":      result.User.Role,
		},
	})
}

type trackRequest struct {
	BuyerID    string         `json:"buyer_id"`
	PropertyID string         `json:"property_id"`
	SessionID  string         `json:"session_id"`
	EventType  string         `json:"event_type"`
	Metadata   map[string]any `json:"event_metadata"`
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.BuyerID == "" || req.EventType == "" {
		writeError(w, http.StatusBadRequest, "buyer_id and event_type are required", "")
		return
	}

	sig, err := s.eventService.Track(r.Context(), event.TrackParams{
		BuyerID:    req.BuyerID,
		PropertyID: req.PropertyID,
		SessionID:  req.SessionID,
		Type:       event.Type(req.EventType),
		Metadata:   req.Metadata,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record event", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         sig.ID,
		"session_id": sig.SessionID,
	})
}

type readinessRequest struct {
	BuyerID    string `json:"buyer_id"`
	PropertyID string `json:"property_id"`
}

type readinessResponse struct {
	BuyerID            string   `json:"buyer_id"`
	PropertyID         string   `json:"property_id"`
	ReadinessScore     int      `json:"readiness_score"`
	SignalsMet         []string `json:"signals_met"`
	SignalsMissing     []string `json:"signals_missing"`
	UrgencyLevel       string   `json:"urgency_level"`
	RecommendedAction  string   `json:"recommended_action"`
	OptimalContactTime string   `json:"optimal_contact_time"`
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req readinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), req.BuyerID, req.PropertyID)
	if err != nil {
		if errors.Is(err, readiness.ErrMissingIDs) {
			writeError(w, http.StatusBadRequest, "buyer_id and property_id are required", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to evaluate readiness", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, readinessResponse{
		BuyerID:            result.BuyerID,
		PropertyID:         result.PropertyID,
		ReadinessScore:     result.Score,
		SignalsMet:         result.SignalsMet,
		SignalsMissing:     result.SignalsMissing,
		UrgencyLevel:       string(result.Urgency),
		RecommendedAction:  result.RecommendedAction,
		OptimalContactTime: result.OptimalContactTime.Format(time.RFC3339),
	})
}

type classifyRequest struct {
	BuyerID string `json:"buyer_id"`
}

type classifyResponse struct {
	BuyerID       string         `json:"buyer_id"`
	PrimaryType   string         `json:"primary_type"`
	SecondaryType *string        `json:"secondary_type,omitempty"`
	Confidence    float64        `json:"confidence_score"`
	Scores        map[string]int `json:"scores"`
	TopIndicators []string       `json:"top_indicators"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := s.classifier.Classify(r.Context(), req.BuyerID)
	if err != nil {
		if errors.Is(err, persona.ErrMissingBuyer) {
			writeError(w, http.StatusBadRequest, "buyer_id is required", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to classify buyer", err.Error())
		return
	}

	var secondary *string
	if result.Secondary != nil {
		v := string(*result.Secondary)
		secondary = &v
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		BuyerID:       result.BuyerID,
		PrimaryType:   string(result.Primary),
		SecondaryType: secondary,
		Confidence:    result.Confidence,
		Scores: map[string]int{
			"scarcity":  result.Scores.Scarcity,
			"roi":       result.Scores.ROI,
			"lifestyle": result.Scores.Lifestyle,
		},
		TopIndicators: result.TopIndicators,
	})
}

type triggerWorkflowRequest struct {
	BuyerID       string `json:"buyer_id"`
	PropertyID    string `json:"property_id"`
	BuyerType     string `json:"buyer_type"`
	ReadinessData *struct {
		ReadinessScore int    `json:"readiness_score"`
		UrgencyLevel   string `json:"urgency_level"`
	} `json:"readiness_data"`
}

func (s *Server) handleTriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req triggerWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.BuyerID == "" || req.PropertyID == "" || req.BuyerType == "" || req.ReadinessData == nil {
		writeError(w, http.StatusBadRequest, "missing required fields", "")
		return
	}

	if _, err := s.workflowService.Dispatch(r.Context(), workflow.DispatchParams{
		BuyerID:    req.BuyerID,
		PropertyID: req.PropertyID,
		BuyerType:  persona.Type(req.BuyerType),
		Score:      req.ReadinessData.ReadinessScore,
		HasScore:   true,
	}); err != nil {
		switch {
		case errors.Is(err, workflow.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "missing required fields", "")
		case errors.Is(err, lead.ErrNotFound):
			writeError(w, http.StatusNotFound, "buyer not found", "")
		case errors.Is(err, property.ErrNotFound):
			writeError(w, http.StatusNotFound, "property not found", "")
		default:
			writeError(w, http.StatusInternalServerError, "failed to trigger workflow", err.Error())
		}
		return
	}

	// Echo the caller's readiness snapshot; the persisted record carries the
	// workflow tier's own label, which collapses HIGH and MEDIUM.
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"workflow_triggered": true,
		"urgency_level":      req.ReadinessData.UrgencyLevel,
		"readiness_score":    req.ReadinessData.ReadinessScore,
	})
}

func (s *Server) handleRetryQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	if s.cronSecret != "" && r.Header.Get("Authorization") != "Bearer "+s.cronSecret {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	stats, err := s.retryQueue.Process(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "retry queue failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"scanned":   stats.Scanned,
		"sent":      stats.Sent,
		"deferred":  stats.Deferred,
		"permanent": stats.Permanent,
		"failed":    stats.Failed,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}
