package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/export"
	"github.com/ericlevine/qrstudio/mask"
	"github.com/ericlevine/qrstudio/options"
)

// parseOptions overlays the query parameters ecl, mask, scale, opaque and
// margin on the configured defaults.
func (s *Server) parseOptions(q url.Values) (qrstudio.EncodeOptions, error) {
	opts, err := s.config().EncodeOptions()
	if err != nil {
		return opts, err
	}
	if v := q.Get("ecl"); v != "" {
		if opts.ECLevel, err = qrstudio.ParseECLevel(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("mask"); v != "" {
		if opts.Mask, err = qrstudio.ParseMask(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: scale %q", qrstudio.ErrInvalidOptions, v)
		}
		opts.PixelScale = n
	}
	for name, dst := range map[string]*bool{"opaque": &opts.Opaque, "margin": &opts.Margin} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, fmt.Errorf("%w: %s %q", qrstudio.ErrInvalidOptions, name, v)
			}
			*dst = b
		}
	}
	return opts, opts.Validate()
}

type encodeResponse struct {
	Size    int    `json:"size"`
	Mask    int    `json:"mask"`
	InUse   *int   `json:"mask_in_use,omitempty"`
	Failure string `json:"failure,omitempty"`
	Message string `json:"message,omitempty"`
	Matrix  string `json:"matrix,omitempty"`
}

// handleEncode reports the preview matrix for text, the way the generator
// view shows it.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		writeEncodeError(w, err)
		return
	}
	c := options.New(s.enc, nil)
	if err := c.SetOptions(opts); err != nil {
		writeEncodeError(w, err)
		return
	}
	c.SetText(r.URL.Query().Get("text"))
	res := c.Result()

	resp := encodeResponse{Mask: res.Mask, Failure: res.Failure.String(), Message: options.Message(res)}
	if res.OK() {
		resp.Size = res.Matrix.Size()
		resp.Matrix = res.Matrix.String()
	}
	if m, ok := c.ActualMaskUsed(res); ok {
		resp.InUse = &m
	}
	status := http.StatusOK
	if !res.OK() {
		status = encodeStatus(res.Err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleExport(f export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts, err := s.parseOptions(q)
		if err != nil {
			writeEncodeError(w, err)
			return
		}
		s.writeBlob(w, r, f, q.Get("text"), opts)
	}
}

func (s *Server) writeBlob(w http.ResponseWriter, r *http.Request, f export.Format, text string, opts qrstudio.EncodeOptions) {
	b, err := s.export.Render(r.Context(), f, text, opts)
	if err != nil {
		qrstudio.Logger().Warn("server: export failed", "path", r.URL.Path, "err", err)
		writeEncodeError(w, err)
		return
	}
	disposition := "inline"
	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, b.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Write(b.Data)
}

type maskResponse struct {
	Mask int    `json:"mask"`
	Size int    `json:"size"`
	Path string `json:"path"`
}

func (s *Server) handleMasks(w http.ResponseWriter, r *http.Request) {
	var out []maskResponse
	for _, g := range mask.Glyphs() {
		out = append(out, maskResponse{Mask: g.Mask, Size: g.Size, Path: g.Path})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMaskSVG(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	g, ok := mask.For(i)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", export.SVGType)
	w.Write([]byte(g.SVG()))
}
