package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// History paging bounds.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type analyzeRequest struct {
	URL string `json:"url"`
}

type analyzeResponse struct {
	SessionID string                 `json:"session_id"`
	Result    *domain.AnalysisResult `json:"result"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type questionResponse struct {
	Answer  string                    `json:"answer"`
	Sources []domain.RetrievedComment `json:"sources"`
}

// sessionResponse is a session without its embedding vectors.
type sessionResponse struct {
	SessionID string                 `json:"session_id"`
	Result    *domain.AnalysisResult `json:"result"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, sessionID, err := s.ports.Analysis.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{SessionID: sessionID, Result: result})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, fmt.Errorf("%w: question is required", domain.ErrInvalidInput))
		return
	}

	answer, err := s.ports.Analysis.Answer(r.Context(), r.PathValue("id"), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.RetrievedComment{}
	}
	writeJSON(w, http.StatusOK, questionResponse{Answer: answer.Text, Sources: sources})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Analysis.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: session.ID,
		Result:    session.Result,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records := []domain.AnalysisRecord{}
	if s.ports.History != nil {
		found, err := s.ports.History.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if found != nil {
			records = found
		}
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// decodeBody reads a JSON object into v, rejecting oversized or malformed bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
