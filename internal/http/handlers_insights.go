package http

import (
	"net/http"
	"strconv"

	"spesa/internal/analytics"
	"spesa/internal/core"
	"spesa/internal/services"
)

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sugs := analytics.Suggestions(s.ledger.Ledger(), s.now())
	if sugs == nil {
		sugs = []core.Suggestion{}
	}
	writeJSON(w, http.StatusOK, sugs)
}

type acceptResponse struct {
	Added bool `json:"added"`
}

// handleAcceptSuggestion puts a suggestion on today's list. A suggestion
// already pending there is reported with added=false.
func (s *Server) handleAcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	var sug core.Suggestion
	if err := decodeJSON(w, r, &sug); err != nil {
		writeError(w, r, err)
		return
	}
	sug.Name = sanitizeInput(sug.Name)
	if sug.Name == "" {
		writeError(w, r, core.ErrEmptyName)
		return
	}
	added := s.ledger.AddItemFromSuggestion(sug)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, acceptResponse{Added: added})
}

type summaryResponse struct {
	Period    core.Period   `json:"period"`
	Label     string        `json:"label"`
	Summary   *core.Summary `json:"summary"`
	Narrative string        `json:"narrative,omitempty"`
}

// handleSummary reports ?period= spending. summary is null when the window
// holds no purchases. ?narrative=true adds an AI-written paragraph.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := parsePeriod(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := summaryResponse{Period: period, Label: period.Label()}
	if sum, ok := analytics.Summarize(s.ledger.Ledger(), period, s.now()); ok {
		resp.Summary = sum
	}
	if narrative, _ := strconv.ParseBool(q.Get("narrative")); narrative {
		if s.ai == nil {
			writeError(w, r, services.ErrAIUnavailable)
			return
		}
		text, err := s.ai.SummarizePeriod(r.Context(), period)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Narrative = text
	}
	writeJSON(w, http.StatusOK, resp)
}

type forecastResponse struct {
	Forecast *core.Forecast `json:"forecast"`
}

// handleForecast answers with a null forecast until there is enough history.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var resp forecastResponse
	if f, ok := analytics.Forecast(s.ledger.Ledger()); ok {
		resp.Forecast = f
	}
	writeJSON(w, http.StatusOK, resp)
}

type receiptResponse struct {
	List  string             `json:"list,omitempty"`
	Batch core.PurchaseBatch `json:"batch"`
}

// handleReceipt scans an uploaded receipt and books it. ?dryRun=true only
// returns what was read.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if s.ai == nil {
		writeError(w, r, services.ErrAIUnavailable)
		return
	}
	upload, err := parseReceiptUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if dry, _ := strconv.ParseBool(r.URL.Query().Get("dryRun")); dry {
		batch, err := s.ai.ScanReceipt(r.Context(), upload.Image, upload.MimeType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, receiptResponse{Batch: batch})
		return
	}

	list, batch, err := s.ai.RecordReceipt(r.Context(), upload.Image, upload.MimeType,
		upload.PaymentMethod, upload.PaymentStatus, upload.Vendor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receiptResponse{List: list, Batch: batch})
}

type insightRequest struct {
	Question string `json:"question"`
}

type insightResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	if s.ai == nil {
		writeError(w, r, services.ErrAIUnavailable)
		return
	}
	var req insightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := s.ai.Ask(r.Context(), sanitizeInput(req.Question))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{Answer: answer})
}
