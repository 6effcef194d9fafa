package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/pushgate/pkg/logger"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// HandlerFunc returns the response for a request. Rendering errors go to the
// server's error handler.
type HandlerFunc func(r *http.Request) Response

// ResponseFunc adapts a function to Response.
type ResponseFunc func(w http.ResponseWriter, r *http.Request) error

func (f ResponseFunc) Render(w http.ResponseWriter, r *http.Request) error { return f(w, r) }

// IsDataStar reports whether the request came from a Datastar action and
// expects an SSE answer.
func IsDataStar(r *http.Request) bool {
	if r.Header.Get("Datastar-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonResponse struct {
	code int
	body envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(j.code)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON wraps data in {"data": ...}.
func JSON(code int, data any) Response {
	return jsonResponse{code: code, body: envelope{Data: data}}
}

func jsonError(code int, msg string) Response {
	return jsonResponse{code: code, body: envelope{Error: &errorDetail{
		Code:    strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_")),
		Message: msg,
	}}}
}

type templResponse struct {
	full    templ.Component
	partial templ.Component
	opts    []datastar.PatchElementOption
}

// Render patches partial over SSE for Datastar requests and writes full as a
// regular HTML page otherwise.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) && t.partial != nil {
		sse := datastar.NewSSE(w, r)
		return sse.PatchElementTempl(t.partial, t.opts...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.full.Render(r.Context(), w)
}

// Templ renders c as HTML, or as a Datastar element patch.
func Templ(c templ.Component, opts ...datastar.PatchElementOption) Response {
	return templResponse{full: c, partial: c, opts: opts}
}

// TemplPartial renders partial for Datastar requests and full otherwise.
func TemplPartial(partial, full templ.Component, opts ...datastar.PatchElementOption) Response {
	return templResponse{full: full, partial: partial, opts: opts}
}

func (s *Server) wrap(name string, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		if resp == nil {
			s.fail(w, r, name, internal(ErrNilResponse))
			return
		}
		if err := resp.Render(w, r); err != nil {
			s.fail(w, r, name, err)
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, err error) {
	var herr HTTPError
	if !errors.As(err, &herr) {
		herr = internal(err)
	}

	level := slog.LevelWarn
	if herr.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed", logger.Handler(name), slog.Int("status", herr.Code), logger.Error(err))

	if IsDataStar(r) || strings.Contains(r.Header.Get("Accept"), "application/json") {
		_ = jsonError(herr.Code, herr.Message).Render(w, r)
		return
	}
	http.Error(w, herr.Message, herr.Code)
}
