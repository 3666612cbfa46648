// Package server exposes the layout engine over a local HTTP API.
//
// The server is read-only and meant for localhost embedding: a desktop
// shell or browser view fetches layout JSON or rendered SVG while all
// editing happens through the CLI. There is no authentication; do not
// bind it to a public interface.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kintreehq/kintree/pkg/gen"
	"github.com/kintreehq/kintree/pkg/graphio"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/store"
)

// Server serves layout and person data from a store.
type Server struct {
	st     store.Store
	logger *log.Logger
}

// New creates a server over the given store. A nil logger discards
// request diagnostics.
func New(st store.Store, logger *log.Logger) *Server {
	return &Server{st: st, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/persons", s.handlePersons)
	r.Get("/api/layout", s.handleLayout)
	r.Get("/api/layout.svg", s.handleLayoutSVG)
	return r
}

func (s *Server) handlePersons(w http.ResponseWriter, r *http.Request) {
	persons, err := s.st.Persons(false)
	if err != nil {
		s.fail(w, err)
		return
	}
	if persons == nil {
		persons = []*gen.Person{}
	}
	s.writeJSON(w, persons)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.computeLayout(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, g)
}

func (s *Server) handleLayoutSVG(w http.ResponseWriter, r *http.Request) {
	g, opts, err := s.computeLayout(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	svg, err := graphio.RenderSVG(r.Context(), graphio.ToDOT(g, opts.Orientation))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// computeLayout runs the layout engine with options taken from query
// parameters: root, orientation, density, couples and auto.
func (s *Server) computeLayout(r *http.Request) (*layout.Graph, layout.Options, error) {
	persons, err := s.st.Persons(false)
	if err != nil {
		return nil, layout.Options{}, err
	}
	families, err := s.st.Families(false)
	if err != nil {
		return nil, layout.Options{}, err
	}

	q := r.URL.Query()
	opts := layout.Options{
		RootID:           q.Get("root"),
		Orientation:      layout.Vertical,
		Density:          layout.Desktop,
		CoupleCompaction: q.Get("couples") != "false",
		Logger:           s.logger,
	}
	if q.Get("orientation") == string(layout.Horizontal) {
		opts.Orientation = layout.Horizontal
	}
	if q.Get("density") == string(layout.Compact) {
		opts.Density = layout.Compact
	}

	g := layout.Layout(persons, families, opts)
	if q.Get("auto") == "true" {
		g.Nodes = layout.AutoArrange(g.Nodes, g.Edges, opts)
	}
	return g, opts, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if s.logger != nil {
		s.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
