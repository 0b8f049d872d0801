// Package clienttest provides an in-process stub of the Advisio platform
// API for tests. Handlers are registered per endpoint and answer with
// response envelopes; every request is recorded so tests can assert on
// headers and form fields.
package clienttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/advisio/advisio/internal/client"
)

// Request is a recorded request to a stub endpoint.
type Request struct {
	Endpoint string
	Header   http.Header
	Form     url.Values
}

// Server is a stub platform API listening on a loopback address.
type Server struct {
	*httptest.Server
	router *chi.Mux

	mu       sync.Mutex
	requests []Request
}

// New starts a stub server with no endpoints registered. The caller owns
// shutdown via Close.
func New() *Server {
	s := &Server{router: chi.NewRouter()}
	s.Server = httptest.NewServer(s.router)
	return s
}

// Handle registers a POST endpoint whose response envelope is computed per
// request. The platform API is POST-only, so that is all the stub serves.
func (s *Server) Handle(endpoint string, respond func(r *http.Request) any) {
	s.router.Post("/"+endpoint, func(w http.ResponseWriter, r *http.Request) {
		s.record(endpoint, r)
		WriteEnvelope(w, respond(r))
	})
}

// HandleStatic registers a POST endpoint that always answers with the same
// envelope.
func (s *Server) HandleStatic(endpoint string, envelope any) {
	s.Handle(endpoint, func(*http.Request) any { return envelope })
}

func (s *Server) record(endpoint string, r *http.Request) {
	// multipart bodies keep their fields out of PostForm; tests inspect
	// file uploads through custom handlers instead
	_ = r.ParseForm()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Endpoint: endpoint,
		Header:   r.Header.Clone(),
		Form:     r.PostForm,
	})
}

// Requests returns the recorded requests for an endpoint, in arrival order.
func (s *Server) Requests(endpoint string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, req := range s.requests {
		if req.Endpoint == endpoint {
			out = append(out, req)
		}
	}
	return out
}

// Count returns how many requests hit an endpoint.
func (s *Server) Count(endpoint string) int {
	return len(s.Requests(endpoint))
}

// WriteEnvelope writes a response envelope as JSON. Strings and byte
// slices are passed through verbatim so tests can serve malformed bodies.
func WriteEnvelope(w http.ResponseWriter, msg any) {
	var body []byte
	switch m := msg.(type) {
	case string:
		body = []byte(m)
	case []byte:
		body = m
	default:
		var err error
		body, err = json.Marshal(m)
		if err != nil {
			log.Error().Err(err).Msg("clienttest: unable to marshal envelope")
			http.Error(w, "marshal failure", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Notice is a recorded user notice.
type Notice struct {
	Kind    client.NoticeKind
	Message string
}

// NoticeRecorder captures user notices raised by the client under test.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records the notice.
func (n *NoticeRecorder) Notify(kind client.NoticeKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{Kind: kind, Message: message})
}

// Notices returns the recorded notices in arrival order.
func (n *NoticeRecorder) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

// Reset clears recorded notices.
func (n *NoticeRecorder) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = nil
}
