package server

import (
	"errors"
	"net/http"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/overlay"
	"github.com/ericlevine/qrstudio/scan"
)

type scanResponse struct {
	State   string           `json:"state"`
	Status  string           `json:"status,omitempty"`
	Width   float64          `json:"width"`
	Height  float64          `json:"height"`
	Text    string           `json:"text,omitempty"`
	Link    string           `json:"link,omitempty"`
	Corners []qrstudio.Point `json:"corners,omitempty"`
	Outline string           `json:"outline,omitempty"`
	Shade   string           `json:"shade,omitempty"`
	Overlay string           `json:"overlay"`
}

// handleScan decodes an uploaded picture. Finding nothing is a valid
// no-result state, not an error.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cfg := s.config()
	body := http.MaxBytesReader(w, r.Body, cfg.Server.MaxUploadBytes)
	img, _, err := scan.DecodeImage(body, cfg.Scan.MaxPixels)
	if errors.Is(err, scan.ErrImageTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	} else if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sess := scan.New(s.scanner, nil, scan.Config{PreferredCamera: cfg.Scan.PreferredCamera})
	st := sess.ScanImage(r.Context(), img)
	ov := sess.Overlay()
	resp := scanResponse{
		State:   st.Kind.String(),
		Status:  st.Status(),
		Width:   st.Width,
		Height:  st.Height,
		Outline: ov.Outline,
		Shade:   ov.Shade,
		Overlay: overlay.Document(ov),
	}
	if st.Result != nil {
		resp.Text = st.Result.Text
		corners := overlay.Corners(st.Result, false)
		resp.Corners = corners[:]
		resp.Link, _ = scan.LinkTarget(st.Result.Text)
	}
	writeJSON(w, http.StatusOK, resp)
}
