// Package server hosts the canvas HTTP/WebSocket process: the scene access
// API, the room credential API, and the collaboration relay.
//
// The relay is transport-only: it routes opaque encrypted payloads by room
// id and never decrypts content.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/driftboard/driftboard/internal/canvas/access"
	"github.com/driftboard/driftboard/internal/canvas/room"
	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
	"github.com/driftboard/driftboard/internal/platform/timeouts"
	canvasstorage "github.com/driftboard/driftboard/internal/services/canvas/storage"
	"github.com/driftboard/driftboard/internal/services/canvas/storage/sqlite"
)

const (
	maxFramePayloadBytes   = 64 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	maxDisplayNameRunes = 64
	maxColorRunes       = 32
)

// Config defines the inputs for the canvas transport boundary.
type Config struct {
	HTTPAddr          string
	StoragePath       string
	AuthSecret        string
	RoomSecret        string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the canvas HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           canvasstorage.Store
}

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type joinPayload struct {
	RoomID      string `json:"room_id"`
	DisplayName string `json:"display_name,omitempty"`
	Color       string `json:"color,omitempty"`
}

type presencePeer struct {
	SocketID    string `json:"socket_id"`
	DisplayName string `json:"display_name,omitempty"`
	Color       string `json:"color,omitempty"`
}

type joinedPayload struct {
	RoomID     string         `json:"room_id"`
	SocketID   string         `json:"socket_id"`
	Peers      []presencePeer `json:"peers"`
	ServerTime string         `json:"server_time"`
}

type presencePayload struct {
	Event       string `json:"event"`
	SocketID    string `json:"socket_id"`
	DisplayName string `json:"display_name,omitempty"`
	Color       string `json:"color,omitempty"`
}

// relayedPayload wraps an opaque encrypted body with non-secret routing
// metadata. The server forwards Body verbatim and never parses it.
type relayedPayload struct {
	SocketID    string          `json:"socket_id"`
	DisplayName string          `json:"display_name,omitempty"`
	Color       string          `json:"color,omitempty"`
	Body        json.RawMessage `json:"body"`
}

type leftPayload struct {
	RoomID string `json:"room_id"`
}

type accessResponse struct {
	CanView        bool `json:"can_view"`
	CanEdit        bool `json:"can_edit"`
	CanCollaborate bool `json:"can_collaborate"`
}

type collaborateResponse struct {
	RoomID  string `json:"room_id"`
	RoomKey string `json:"room_key"`
}

// NewServer builds a configured canvas server, opening storage and wiring
// the credential manager and websocket authorization.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := sqlite.Open(config.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open canvas storage: %w", err)
	}

	handler, err := newHandler(store, config.AuthSecret, config.RoomSecret)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		store:           store,
	}, nil
}

// Run creates and serves a canvas server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init canvas server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve canvas: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("canvas server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("canvas server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("canvas: close storage: %v", err)
		}
	}
}

// newHandler wires canvas routes over a store. Both secrets are required.
func newHandler(store canvasstorage.Store, authSecret, roomSecret string) (http.Handler, error) {
	authenticator, err := newJWTAuthenticator(authSecret)
	if err != nil {
		return nil, err
	}
	resolver := storeResolver{store: store}
	manager, err := room.NewManager(store, resolver, roomSecret)
	if err != nil {
		return nil, err
	}

	api := &sceneAPI{
		authenticator: authenticator,
		resolver:      resolver,
		manager:       manager,
	}

	hub := newRoomHub()
	authorizer := roomJoinAuthorizer{store: store, resolver: resolver}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/api/scenes/", api.handleSceneRoutes)
	mux.HandleFunc("/ws", wsEndpoint(hub, authenticator, authorizer))
	return mux, nil
}

type sceneAPI struct {
	authenticator *jwtAuthenticator
	resolver      storeResolver
	manager       *room.Manager
}

// handleSceneRoutes dispatches /api/scenes/{sceneID}/{access|collaborate}.
func (api *sceneAPI) handleSceneRoutes(w http.ResponseWriter, r *http.Request) {
	locale := r.Header.Get("Accept-Language")

	rest := strings.TrimPrefix(r.URL.Path, "/api/scenes/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeNotFound, "unknown scene route"), locale)
		return
	}
	sceneID, action := parts[0], parts[1]

	userID, err := api.authenticator.AuthenticateRequest(r)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}

	switch action {
	case "access":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		api.handleAccess(w, r, userID, sceneID, locale)
	case "collaborate":
		switch r.Method {
		case http.MethodPost:
			api.handleCollaborateStart(w, r, userID, sceneID, locale)
		case http.MethodGet:
			api.handleCollaborateGet(w, r, userID, sceneID, locale)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeNotFound, "unknown scene route"), locale)
	}
}

func (api *sceneAPI) handleAccess(w http.ResponseWriter, r *http.Request, userID, sceneID, locale string) {
	decision, err := api.resolver.ResolveScene(r.Context(), userID, sceneID)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}
	if decision.Denied() {
		apperrors.WriteHTTP(w, denialError(decision), locale)
		return
	}
	writeJSON(w, accessResponse{
		CanView:        decision.CanView,
		CanEdit:        decision.CanEdit,
		CanCollaborate: decision.CanCollaborate,
	})
}

func (api *sceneAPI) handleCollaborateStart(w http.ResponseWriter, r *http.Request, userID, sceneID, locale string) {
	creds, err := api.manager.StartOrGet(r.Context(), sceneID, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}
	writeJSON(w, collaborateResponse{
		RoomID:  creds.RoomID,
		RoomKey: base64.StdEncoding.EncodeToString(creds.Key),
	})
}

func (api *sceneAPI) handleCollaborateGet(w http.ResponseWriter, r *http.Request, userID, sceneID, locale string) {
	creds, ok, err := api.manager.GetExisting(r.Context(), sceneID, userID)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}
	if !ok {
		// No room started yet is not an error for a collaborator.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null\n"))
		return
	}
	writeJSON(w, collaborateResponse{
		RoomID:  creds.RoomID,
		RoomKey: base64.StdEncoding.EncodeToString(creds.Key),
	})
}

// denialError maps an all-false decision to the boundary error: existence
// stays hidden from non-members, members get an explicit denial.
func denialError(decision access.Decision) error {
	if !decision.IsMember {
		return apperrors.New(apperrors.CodeNotFound, "scene not found")
	}
	return apperrors.New(apperrors.CodeAccessDenied, "no access to scene")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("canvas: write json response: %v", err)
	}
}
