package web

import (
	"encoding/json"
	"net/http"

	"vending-agent/internal/core"

	"github.com/rs/zerolog/log"
)

// statusFor maps a failure cause to its HTTP status. Conflicts are reported
// as 400 like any other rejected request.
func statusFor(cause core.Cause) int {
	switch cause {
	case core.CauseNotFound:
		return http.StatusNotFound
	case core.CauseValidation, core.CauseConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeResult writes res with the status implied by its cause.
func writeResult(w http.ResponseWriter, r *http.Request, res core.Result) {
	status := http.StatusOK
	if res.Error != nil {
		status = statusFor(res.Error.Cause)
		if status == http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Str("cause", string(res.Error.Cause)).Msg(res.Error.Message)
		}
	}
	writeJSON(w, status, res)
}

// writeError writes a failure that did not come from the service layer,
// such as a malformed body or a missing token.
func writeError(w http.ResponseWriter, message string, cause core.Cause, status int) {
	writeJSON(w, status, core.Result{Error: &core.ErrorDetail{Message: message, Cause: cause}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
