package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// RunState is the phase of the run behind the service.
type RunState string

const (
	RunIdle       RunState = "idle"
	RunInProgress RunState = "running"
	RunFinished   RunState = "finished"
)

// Status is the body served on /healthz.
type Status struct {
	Status string   `json:"status"`
	Run    RunState `json:"run"`
	Result string   `json:"result,omitempty"`
}

// StatusFunc reports the current run state. It is called once per request.
type StatusFunc func() Status

type HealthzServer struct {
	ctx    context.Context
	log    log.Logger
	status StatusFunc
	server *http.Server
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	h.server = &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	h.ctx = ctx
	return h.server.ListenAndServe()
}

func (h *HealthzServer) Shutdown() error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(h.ctx)
}

// Handle answers 200 while the process is up, with the run state as JSON.
func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	st := Status{Run: RunIdle}
	if h.status != nil {
		st = h.status()
	}
	st.Status = "OK"
	if h.log != nil {
		h.log.Debug("Received health check request", "path", r.URL.Path, "run", st.Run)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil && h.log != nil {
		h.log.Error("Failed to write health check response", "error", err)
	}
}
