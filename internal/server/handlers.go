package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/model"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

type fundsRequest struct {
	// TotalFunds accepts a JSON string or number; null or "" unsets funds.
	TotalFunds any `json:"total_funds"`
}

type addItemRequest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

type updateItemRequest struct {
	Name       *string  `json:"name"`
	Amount     *float64 `json:"amount"`
	Percentage *float64 `json:"percentage"`
	Category   *string  `json:"category"`
	Color      *string  `json:"color"`
}

type itemResponse struct {
	Item          model.LineItem `json:"item"`
	OverAllocated bool           `json:"over_allocated"`
	Summary       model.Summary  `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.Summary())
}

func (s *Server) handleChart(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.Chart())
}

func (s *Server) handleSetFunds(w http.ResponseWriter, r *http.Request) {
	var req fundsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	var raw string
	switch v := req.TotalFunds.(type) {
	case nil:
	case string:
		raw = v
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s.writeErr(w, fmt.Errorf("%w: total_funds must be a string or number", errBadRequest))
		return
	}

	if err := s.sess.SetTotalFunds(raw); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleDefault(w http.ResponseWriter, _ *http.Request) {
	ids, err := s.sess.AddDefaultPortfolio()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"ids":       ids,
		"portfolio": s.sess.Snapshot(),
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"items": s.sess.Items(),
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	s.writeItem(w, http.StatusOK, chi.URLParam(r, "id"))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	f := alloc.NewItem{
		Name:       req.Name,
		Color:      req.Color,
		Percentage: req.Percentage,
	}
	if req.Category != "" {
		c, err := parseCategory(req.Category)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		f.Category = c
	}

	id, err := s.sess.AddItem(f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Location", "/v1/items/"+id)
	s.writeItem(w, http.StatusCreated, id)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	p := alloc.Patch{
		Name:       req.Name,
		Amount:     req.Amount,
		Percentage: req.Percentage,
		Color:      req.Color,
	}
	if req.Category != nil {
		c, err := parseCategory(*req.Category)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		p.Category = &c
	}
	if p.IsEmpty() {
		s.writeErr(w, fmt.Errorf("%w: no fields to update", errBadRequest))
		return
	}

	if err := s.sess.UpdateItem(id, p); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeItem(w, http.StatusOK, id)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.RemoveItem(chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, err := alloc.Encode(s.sess.Record())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rec, err := alloc.Decode(data)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	n, err := s.sess.Restore(alloc.Deserialize(rec))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"reassigned_ids": n,
		"portfolio":      s.sess.Snapshot(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeErr(w, fmt.Errorf("%w: since must be an integer", errBadRequest))
			return
		}
		since = n
	}
	s.writeJSON(w, http.StatusOK, s.eventsSince(since))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan alloc.Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	writeSSE(w, "snapshot", s.sess.Snapshot())
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev := <-ch:
			writeSSE(w, string(ev.Kind), ev)
			flusher.Flush()
		}
	}
}

func (s *Server) writeItem(w http.ResponseWriter, status int, id string) {
	item, ok := s.sess.Item(id)
	if !ok {
		s.writeErr(w, fmt.Errorf("item %s: %w", id, alloc.ErrNotFound))
		return
	}
	s.writeJSON(w, status, itemResponse{
		Item:          item,
		OverAllocated: s.sess.OverAllocated(id),
		Summary:       s.sess.Summary(),
	})
}

func parseCategory(s string) (model.Category, error) {
	c, ok := model.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", alloc.ErrInvalidCategory, s)
	}
	return c, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, alloc.ErrCorruptRecord):
		return http.StatusBadRequest
	case errors.Is(err, alloc.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, alloc.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, alloc.ErrInvalidTotalFunds),
		errors.Is(err, alloc.ErrNegativeAmount),
		errors.Is(err, alloc.ErrInvalidAmount),
		errors.Is(err, alloc.ErrConflictingUpdate),
		errors.Is(err, alloc.ErrInvalidCategory),
		errors.Is(err, alloc.ErrInvalidColor):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("encoding JSON response")
	}
}
