// Package server exposes the companion to a browser page over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rcliao/talk-companion/internal/companion"
	"github.com/rcliao/talk-companion/internal/i18n"
	"github.com/rcliao/talk-companion/internal/model"
)

// Server holds the HTTP handlers for one companion.
type Server struct {
	companion *companion.Companion
	hub       *Hub
	static    http.Handler
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
}

// New creates a server. static, when non-nil, serves the site root
// (including the content/ tree) for every path the API does not claim.
func New(c *companion.Companion, static http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		companion: c,
		hub:       NewHub(logger),
		static:    static,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Hub returns the websocket hub. Its Run loop must be started by the caller.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes returns the router with every endpoint registered.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	api.HandleFunc("/strings", s.getStrings).Methods(http.MethodGet)
	api.HandleFunc("/unlock", s.unlock).Methods(http.MethodPost)
	api.HandleFunc("/forget", s.forget).Methods(http.MethodPost)
	api.HandleFunc("/lang", s.setLanguage).Methods(http.MethodPost)
	api.HandleFunc("/links", s.links).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id:[0-9]+}", s.openSlide).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)

	if s.static != nil {
		r.PathPrefix("/").Handler(s.static)
	}
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// StateResponse is the visitor's state plus the UI text for its language.
type StateResponse struct {
	State   model.State  `json:"state"`
	Strings i18n.Strings `json:"strings"`
}

// UnlockRequest carries a typed code.
type UnlockRequest struct {
	Code string `json:"code"`
}

// UnlockResponse reports a submission outcome. Result is one of blank,
// exact, fuzzy, or wrong.
type UnlockResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Code    string `json:"code,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Slides  []int  `json:"slides,omitempty"`
}

// LanguageRequest selects a locale.
type LanguageRequest struct {
	Language string `json:"language"`
}

// LinksResponse lists the slide explanations currently offered.
type LinksResponse struct {
	Language i18n.Locale      `json:"language"`
	Links    []companion.Link `json:"links"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) getStrings(w http.ResponseWriter, r *http.Request) {
	loc, ok := i18n.FromRequest(r)
	if !ok {
		loc = s.companion.State().Language
	}
	writeJSON(w, http.StatusOK, i18n.For(loc))
}

func (s *Server) unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	out, err := s.companion.Submit(r.Context(), req.Code)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to unlock")
		http.Error(w, "Failed to save state", http.StatusInternalServerError)
		return
	}

	resp := UnlockResponse{
		Success: out.Result.Matched(),
		Result:  out.Result.String(),
		Notice:  out.Notice,
		Slides:  out.Slides,
	}
	if out.Entry != nil {
		resp.Code = out.Entry.Code
		s.hub.Broadcast("state", s.stateResponse())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) forget(w http.ResponseWriter, r *http.Request) {
	if err := s.companion.Forget(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to forget codes")
		http.Error(w, "Failed to save state", http.StatusInternalServerError)
		return
	}
	resp := s.stateResponse()
	s.hub.Broadcast("state", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	loc, err := i18n.ParseLocale(req.Language)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.companion.SetLanguage(r.Context(), loc); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set language")
		http.Error(w, "Failed to save state", http.StatusInternalServerError)
		return
	}
	resp := s.stateResponse()
	s.hub.Broadcast("state", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) links(w http.ResponseWriter, r *http.Request) {
	links, lang, err := s.companion.Refresh(r.Context())
	if err != nil {
		// client went away mid-probe
		s.logger.Debug().Err(err).Msg("Link refresh aborted")
		http.Error(w, "Request canceled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Language: lang, Links: links})
}

func (s *Server) openSlide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid slide id", http.StatusBadRequest)
		return
	}
	html, ok := s.companion.Open(r.Context(), id)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<p>" + html + "</p>"))
		return
	}
	_, _ = w.Write([]byte(html))
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	c := &client{
		id:   ulid.Make().String(),
		hub:  s.hub,
		conn: conn,
		send: make(chan Message, 16),
	}
	// Greet with the current state so the page renders without polling.
	c.send <- Message{Type: "state", Timestamp: time.Now().UTC(), Data: s.stateResponse()}
	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (s *Server) stateResponse() StateResponse {
	st := s.companion.State()
	return StateResponse{State: st, Strings: i18n.For(st.Language)}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
