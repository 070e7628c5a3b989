package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/client"
	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
)

type HttpRouteHandler struct {
	queue    *client.AdmissionQueue
	status   *client.StatusReporter
	resolver *client.IdentityResolver
	Port     uint
}

func NewRouteHandler(
	queue *client.AdmissionQueue,
	status *client.StatusReporter,
	resolver *client.IdentityResolver,
	port uint,
) HttpRouteHandler {
	return HttpRouteHandler{
		queue:    queue,
		status:   status,
		resolver: resolver,
		Port:     port,
	}
}

// Handler returns the mux with every route registered.
func (handler *HttpRouteHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	handler.handleAddToQueue(mux)
	handler.handleCheckBusy(mux)
	handler.handleActiveViolation(mux)
	handler.handleStatus(mux)
	return mux
}

// Serve blocks until ctx is cancelled or the listener fails.
func (handler *HttpRouteHandler) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", handler.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	printBanner(addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (handler *HttpRouteHandler) handleAddToQueue(mux *http.ServeMux) {
	mux.HandleFunc("/add_to_queue", logMiddleware(allowMethods(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed request", http.StatusBadRequest)
			return
		}
		req := client.SubmitRequest{
			JobID:  strings.TrimSpace(r.Form.Get("rule_id")),
			UserID: strings.TrimSpace(r.Form.Get("user_id")),
			Label:  r.Form.Get("name"),
		}

		accepted, err := handler.queue.Submit(r.Context(), req)
		if err != nil {
			reason, ok := custom_errors.ReasonOf(err)
			if !ok {
				reason = custom_errors.ReasonPersistenceFailure
			}
			resp := rejectionResponses[reason]
			w.Header().Set(OutcomeHeader, reason.String())
			writeText(w, resp.status, resp.message)
			return
		}

		outcome := OutcomeAccepted
		message := fmt.Sprintf("Queued job %s for %s.", accepted.JobID, accepted.Label)
		if accepted.Degraded {
			outcome = OutcomeAcceptedDegraded
			message += " The busy flag could not be written; the worker will set it."
		}
		w.Header().Set(OutcomeHeader, outcome)
		writeText(w, http.StatusOK, message)
	}, http.MethodGet, http.MethodPost)))
}

func (handler *HttpRouteHandler) handleCheckBusy(mux *http.ServeMux) {
	mux.HandleFunc("/check_busy", logMiddleware(allowMethods(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeText(w, http.StatusOK, handler.status.Query(r.Context()).String())
	}, http.MethodGet)))
}

func (handler *HttpRouteHandler) handleActiveViolation(mux *http.ServeMux) {
	mux.HandleFunc("/get_active_violation", logMiddleware(allowMethods(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			writeText(w, http.StatusBadRequest, "0")
			return
		}
		jobID, ok := handler.resolver.OldestUnpaid(r.Context(), userID)
		if !ok {
			jobID = "0"
		}
		writeText(w, http.StatusOK, jobID)
	}, http.MethodGet)))
}

func (handler *HttpRouteHandler) handleStatus(mux *http.ServeMux) {
	mux.HandleFunc("/status", logMiddleware(allowMethods(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := handler.status.Snapshot(r.Context())
		if err != nil {
			log.Printf("[http] status snapshot: %v", err)
			http.Error(w, "status unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Printf("[http] encode status: %v", err)
		}
	}, http.MethodGet)))
}
