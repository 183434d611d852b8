package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/drag"
	"github.com/ericlevine/qrstudio/export"
)

// pair is one pairing view: a draggable companion code over shared video.
type pair struct {
	id      string
	pos     *drag.Positioner
	touched time.Time
}

type pairResponse struct {
	ID       string        `json:"id"`
	Position drag.Position `json:"position"`
	Layout   drag.Layout   `json:"layout"`
	Dragging bool          `json:"dragging"`
	Handled  *bool         `json:"handled,omitempty"`
}

// response must be called with s.mu held.
func (p *pair) response() pairResponse {
	_, active := p.pos.Active()
	pos := p.pos.Position()
	return pairResponse{ID: p.id, Position: pos, Layout: drag.LayoutFor(pos), Dragging: active}
}

// pruneLocked drops sessions idle longer than the configured TTL.
func (s *Server) pruneLocked(now time.Time) {
	ttl := time.Duration(s.cfg.Server.PairTTLSec) * time.Second
	if ttl <= 0 {
		return
	}
	for id, p := range s.pairs {
		if now.Sub(p.touched) > ttl {
			delete(s.pairs, id)
		}
	}
}

// lookupLocked returns the live session for id and marks it used.
func (s *Server) lookupLocked(id string) (*pair, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	now := s.now()
	s.pruneLocked(now)
	p, ok := s.pairs[id]
	if ok {
		p.touched = now
	}
	return p, ok
}

func (s *Server) handlePairCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	now := s.now()
	s.pruneLocked(now)
	p := &pair{id: uuid.NewString(), pos: drag.New(), touched: now}
	s.pairs[p.id] = p
	resp := p.response()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePairGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.lookupLocked(mux.Vars(r)["id"])
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	resp := p.response()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// PointerEvent is the body of a pointer request. Type is down, move, up or
// cancel; X and Y are client coordinates.
type PointerEvent struct {
	Type           string  `json:"type"`
	PointerID      int     `json:"pointer_id"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
}

func (s *Server) handlePairPointer(w http.ResponseWriter, r *http.Request) {
	var ev PointerEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid pointer event: " + err.Error()})
		return
	}

	s.mu.Lock()
	p, ok := s.lookupLocked(mux.Vars(r)["id"])
	if !ok {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	var handled bool
	switch ev.Type {
	case "down":
		handled = p.pos.Down(ev.PointerID, ev.X, ev.Y)
	case "move":
		handled = p.pos.Move(ev.PointerID, ev.X, ev.Y, ev.ViewportWidth, ev.ViewportHeight)
	case "up":
		handled = p.pos.Up(ev.PointerID)
	case "cancel":
		handled = p.pos.Cancel(ev.PointerID)
	default:
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown pointer event type " + ev.Type})
		return
	}
	resp := p.response()
	s.mu.Unlock()
	resp.Handled = &handled
	writeJSON(w, http.StatusOK, resp)
}

// handlePairQR serves the companion code, which carries the session id.
func (s *Server) handlePairQR(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.lookupLocked(mux.Vars(r)["id"])
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		writeEncodeError(w, err)
		return
	}
	opts.ECLevel = qrstudio.ECLevelL
	s.writeBlob(w, r, export.FormatPNG, p.id, opts)
}
