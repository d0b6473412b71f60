// Package httpapi serves the snackbard HTTP control interface.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 10

// stateTimeout bounds how long GET /state waits for the owning loop.
const stateTimeout = 2 * time.Second

// Options configures the router.
type Options struct {
	Presenter snackbar.Presenter
	Metrics   http.Handler // Served on /metrics when set
	Events    *Hub         // Served on /events when set
	Logger    *slog.Logger
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	presenter snackbar.Presenter
	logger    *slog.Logger
}

// dismissRequest is the body of POST /dismiss. An empty body dismisses.
type dismissRequest struct {
	ByUser bool `json:"by_user"`
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	Visibility string             `json:"visibility"`
	Generation uint64             `json:"generation"`
	Current    *input.RequestSpec `json:"current,omitempty"`
	Pending    *input.RequestSpec `json:"pending,omitempty"`
}

// NewStateResponse converts a state snapshot.
func NewStateResponse(st snackbar.State) StateResponse {
	resp := StateResponse{
		Visibility: st.Visibility.String(),
		Generation: st.Generation,
	}
	if st.Current != nil {
		spec := input.SpecFor(*st.Current)
		resp.Current = &spec
	}
	if st.Pending != nil {
		spec := input.SpecFor(*st.Pending)
		resp.Pending = &spec
	}
	return resp
}

// NewRouter creates the router.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handlers := &Handlers{presenter: opts.Presenter, logger: logger}
	router := chi.NewRouter()

	router.Get("/healthz", handlers.healthz)
	router.Post("/show", handlers.show)
	router.Post("/dismiss", handlers.dismiss)
	router.Get("/state", handlers.state)

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Events != nil {
		router.Get("/events", opts.Events.HandleWebSocket)
	}

	return router
}

func (handlers *Handlers) healthz(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("ok"))
}

func (handlers *Handlers) show(writer http.ResponseWriter, request *http.Request) {
	var payload input.RequestSpec
	if err := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}

	req, err := payload.Request()
	if err != nil {
		writeJSON(writer, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	if err := handlers.presenter.Show(req); err != nil {
		handlers.unavailable(writer, "show", err)
		return
	}

	handlers.logger.Debug("show requested over HTTP", "request", req.String())
	writeJSON(writer, http.StatusAccepted, map[string]any{"status": "queued", "request": input.SpecFor(req)})
}

func (handlers *Handlers) dismiss(writer http.ResponseWriter, request *http.Request) {
	var payload dismissRequest
	if request.ContentLength != 0 {
		err := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes)).Decode(&payload)
		if err != nil && !errors.Is(err, io.EOF) {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
			return
		}
	}

	var err error
	if payload.ByUser {
		err = handlers.presenter.DismissByUser()
	} else {
		err = handlers.presenter.Dismiss()
	}
	if err != nil {
		handlers.unavailable(writer, "dismiss", err)
		return
	}

	writeJSON(writer, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (handlers *Handlers) state(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), stateTimeout)
	defer cancel()

	st, err := handlers.presenter.State(ctx)
	if err != nil {
		handlers.unavailable(writer, "state", err)
		return
	}
	writeJSON(writer, http.StatusOK, NewStateResponse(st))
}

func (handlers *Handlers) unavailable(writer http.ResponseWriter, op string, err error) {
	handlers.logger.Warn("snackbar unavailable", "op", op, "error", err)
	writeJSON(writer, http.StatusServiceUnavailable, map[string]string{"error": "unavailable"})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
