package web

import (
	"fmt"
	"net/http"

	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
)

// OutcomeHeader carries the machine-readable submission outcome.
const OutcomeHeader = "X-Pushup-Outcome"

const (
	OutcomeAccepted         = "accepted"
	OutcomeAcceptedDegraded = "accepted_degraded"
)

type rejectionResponse struct {
	status  int
	message string
}

var rejectionResponses = map[custom_errors.Reason]rejectionResponse{
	custom_errors.ReasonAlreadyQueued:      {http.StatusConflict, "A job is already queued. Try again once the actuator is ready."},
	custom_errors.ReasonActuatorBusy:       {http.StatusConflict, "The actuator is busy. Try again once it reports READY."},
	custom_errors.ReasonIdentityNotFound:   {http.StatusNotFound, "Could not resolve a job for this user."},
	custom_errors.ReasonMissingParameters:  {http.StatusBadRequest, "Missing parameters: a job id or user id and a name are required."},
	custom_errors.ReasonPersistenceFailure: {http.StatusInternalServerError, "The job could not be stored."},
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

func printBanner(addr string) {
	width := 46
	fmt.Println("##############################################")
	fmt.Printf("# %-*s #\n", width-4, "")
	fmt.Printf("# %-*s #\n", width-4, "Pushup admission started")
	fmt.Printf("# %-*s #\n", width-4, fmt.Sprintf("Listening on %s", addr))
	fmt.Printf("# %-*s #\n", width-4, "")
	fmt.Println("##############################################")
}
