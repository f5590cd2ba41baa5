package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/present"
	"github.com/mithrel/topviews/internal/present/format"
)

// Query parameters read alongside the link state
const (
	paramPages = "pages"
	paramQuery = "q"
	paramFresh = "fresh"
)

type errorBody struct {
	Error perr.Wire `json:"error"`
}

type linkBody struct {
	Link      string              `json:"link"`
	Permalink string              `json:"permalink"`
	State     linkstate.ViewState `json:"state"`
	Warnings  []perr.Wire         `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, perr.HTTPStatus(err), errorBody{Error: perr.WireFrom(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// load drives a fresh controller to the state the request's query names
func (s *Server) load(r *http.Request) (*controller.Controller, error) {
	q := r.URL.Query()
	pages := 1
	if v := q.Get(paramPages); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, perr.WithField(perr.InvalidArgf("pages must be a positive integer, got %q", v), paramPages)
		}
		pages = n
	}
	fresh, _ := strconv.ParseBool(q.Get(paramFresh))

	c := s.newController()
	req := c.Load(r.URL.RawQuery)
	if req != nil && fresh {
		req.Query.Fresh = true
	}
	if err := controller.Drive(r.Context(), c, s.opts.Source, req); err != nil {
		return c, err
	}
	for i := 1; i < pages; i++ {
		if !c.Expand() {
			break
		}
	}
	c.Search(q.Get(paramQuery))
	return c, nil
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	c, err := s.load(r)
	if c == nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = perr.HTTPStatus(err)
	}
	writeJSON(w, status, present.Snap(c))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	c, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(c, "csv")))
	if err := format.WriteCSV(w, c.Export()); err != nil {
		s.log.Warn().Err(err).Msg("csv export")
	}
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	c, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(c, "json")))
	if err := format.WriteJSON(w, c.Export(), false); err != nil {
		s.log.Warn().Err(err).Msg("json export")
	}
}

// handleLink normalizes a link without fetching. Malformed fields come back
// as warnings next to the defaults that replaced them.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	codec := s.opts.Codec
	if codec == nil {
		codec = linkstate.NewCodec(linkstate.Defaults{})
	}
	st, err := codec.Decode(r.URL.RawQuery)
	body := linkBody{
		Link:      codec.Encode(st),
		Permalink: codec.Permalink(st, s.now()),
		State:     st,
	}
	for _, e := range perr.Flatten(err) {
		body.Warnings = append(body.Warnings, perr.WireFrom(e))
	}
	if body.State.Excludes == nil {
		body.State.Excludes = []string{}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

func exportName(c *controller.Controller, ext string) string {
	st := c.State()
	date := strings.ReplaceAll(st.Date.Explicit(c.Now()).String(), "/", "-")
	return fmt.Sprintf("topviews-%s-%s.%s", st.Project, date, ext)
}
