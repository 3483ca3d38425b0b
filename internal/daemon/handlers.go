package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/letmecheque/letmecheque/internal/model"
	"github.com/letmecheque/letmecheque/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type errorBody struct {
	Error     string `json:"error"`
	Condition string `json:"condition,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeCondition maps an engine error to its HTTP status.
func (s *Service) writeCondition(w http.ResponseWriter, err error) {
	cond := pipeline.Condition(err)
	status := http.StatusInternalServerError
	switch cond {
	case "UnknownCategory":
		status = http.StatusNotFound
	case "InsufficientData", "ForecastExempt":
		status = http.StatusUnprocessableEntity
	case "NegativeDelta", "InvalidAmount":
		status = http.StatusBadRequest
	case "DatasetUnavailable", "MissingColumn":
		status = http.StatusServiceUnavailable
	default:
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Condition: cond})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// spendingSeries resolves the {category} path parameter and aggregates it.
func (s *Service) spendingSeries(r *http.Request) (model.AggregatedSeries, error) {
	cur := s.current()
	if cur.spendingErr != nil {
		return model.AggregatedSeries{}, cur.spendingErr
	}
	name, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		name = chi.URLParam(r, "category")
	}
	return pipeline.Aggregate(cur.spending, pipeline.ResolveCategory(cur.spending, name))
}

func (s *Service) handleCategories(w http.ResponseWriter, _ *http.Request) {
	cur := s.current()
	if cur.spendingErr != nil {
		s.writeCondition(w, cur.spendingErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":     cur.spending.Source,
		"categories": cur.spending.Selectable(),
	})
}

func (s *Service) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.spendingSeries(r)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	series, err := s.spendingSeries(r)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	fc, err := s.cfg.Policy.Forecast(series)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	delta := 0.0
	if raw := r.URL.Query().Get("delta"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "delta must be a number")
			return
		}
		delta = v
	}

	series, err := s.spendingSeries(r)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	sim, err := pipeline.Simulate(series, delta)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

func (s *Service) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	cur := s.current()
	if cur.platformErr != nil {
		s.writeCondition(w, cur.platformErr)
		return
	}
	ranked := pipeline.RankPlatforms(cur.platforms)
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		if n < len(ranked) {
			ranked = ranked[:n]
		}
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Service) handleLocations(w http.ResponseWriter, _ *http.Request) {
	alerts := make([]model.LocationAlert, 0, len(s.cfg.Locations))
	for _, loc := range s.cfg.Locations {
		alerts = append(alerts, pipeline.ClassifyLocation(loc, s.cfg.HighSpend))
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Service) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	s.log.Info("session created", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": sess.ID})
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balancesResponse struct {
	SessionID string          `json:"session_id"`
	Balances  model.Balances  `json:"balances"`
	Total     decimal.Decimal `json:"total"`
}

func (s *Service) handleSetBalances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in model.Balances
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid balances body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, ok := s.sessions.SetBalances(id, in)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, balancesResponse{
		SessionID: sess.ID,
		Balances:  sess.Balances,
		Total:     sess.Balances.Total(),
	})
}

type riskResponse struct {
	model.RiskAssessment
	Prompt string `json:"prompt,omitempty"`
}

// BalancePrompt is shown instead of a ratio when no balance is known.
const BalancePrompt = "Enter your balances to get a risk assessment"

func (s *Service) handleRisk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	weekly := s.cfg.WeeklyDefault
	if raw := r.URL.Query().Get("weekly"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekly must be a number")
			return
		}
		weekly = v
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	a, err := pipeline.Risk(sess.Balances, weekly, s.cfg.Threshold)
	if err != nil {
		s.writeCondition(w, err)
		return
	}
	resp := riskResponse{RiskAssessment: a}
	if resp.Level == model.RiskIndeterminate {
		resp.Prompt = BalancePrompt
	}
	writeJSON(w, http.StatusOK, resp)
}
