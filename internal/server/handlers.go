package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/report"
	"github.com/yourusername/odds-apex/internal/scoring"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type estimateRequest struct {
	Form     scoring.Form `json:"form"`
	LiveOdds *float64     `json:"live_odds,omitempty"`
	Seed     *int64       `json:"seed,omitempty"`
}

type estimateResponse struct {
	Estimate  models.ProbabilityEstimate `json:"estimate"`
	Valuation *models.Valuation          `json:"valuation,omitempty"`
	Record    string                     `json:"record,omitempty"`
}

type fieldRequest struct {
	Competitors []engine.Submission `json:"competitors"`
	Seed        *int64              `json:"seed,omitempty"`
}

type failureResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type fieldResponse struct {
	RunID    string              `json:"run_id"`
	Entries  []models.FieldEntry `json:"entries"`
	Records  []string            `json:"records"`
	Failures []failureResponse   `json:"failures"`
}

type stakesRequest struct {
	Policy       string   `json:"policy"`
	Bankroll     float64  `json:"bankroll"`
	Report       string   `json:"report"`
	FlatPct      *float64 `json:"flat_pct,omitempty"`
	MiniKellyPct *float64 `json:"mini_kelly_pct,omitempty"`
}

func (s *Server) seed(requested *int64) int64 {
	if requested != nil {
		return *requested
	}
	return s.cfg.DefaultSeed
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decode(w, r, &req) {
		return
	}

	input, err := scoring.ParseForm(req.Form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	est, err := s.engine.EstimateWinProbability(r.Context(), input, s.seed(req.Seed))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := estimateResponse{Estimate: est}
	odds, hasOdds := 0.0, false
	if req.LiveOdds != nil {
		odds, hasOdds = *req.LiveOdds, true
	} else if _, ok := req.Form[scoring.FieldLiveOdds]; ok {
		if odds, err = scoring.LiveOdds(req.Form); err != nil {
			s.writeError(w, err)
			return
		}
		hasOdds = true
	}
	if hasOdds {
		v, err := s.engine.ValueAgainstMarket(est, input.Name, odds)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Valuation = &v
		resp.Record = report.Format(v)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Competitors) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "competitors is required", Field: "competitors"})
		return
	}

	result, err := s.engine.EvaluateField(r.Context(), req.Competitors, s.seed(req.Seed))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := fieldResponse{
		RunID:    result.RunID,
		Entries:  result.Entries,
		Records:  make([]string, 0, len(result.Entries)),
		Failures: make([]failureResponse, 0, len(result.Failures)),
	}
	for _, e := range result.Entries {
		resp.Records = append(resp.Records, report.Format(e.Valuation))
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, failureResponse{
			Index: f.Index,
			Name:  f.Name,
			Error: f.Err.Error(),
			Field: fieldOf(f.Err),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStakes(w http.ResponseWriter, r *http.Request) {
	var req stakesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Policy == "" {
		req.Policy = s.defaultPolicy()
	}

	result, err := s.engine.StakeReport(r.Context(), strings.NewReader(req.Report), engine.StakeRequest{
		Policy:       req.Policy,
		Bankroll:     req.Bankroll,
		FlatPct:      req.FlatPct,
		MiniKellyPct: req.MiniKellyPct,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if engine.IsInputError(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: fieldOf(err)})
		return
	}
	s.logger.WithError(err).Error("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// fieldOf names the input that caused err, when known.
func fieldOf(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	switch {
	case errors.Is(err, models.ErrInvalidOdds):
		return scoring.FieldLiveOdds
	case errors.Is(err, models.ErrInvalidBankroll):
		return "bankroll"
	case errors.Is(err, models.ErrUnknownPolicy):
		return "policy"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
