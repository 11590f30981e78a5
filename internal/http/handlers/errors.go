package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/http/respond"
	"github.com/hongminglow/mposter-be/internal/logger"
	"github.com/hongminglow/mposter-be/internal/validation"
)

const msgServerError = "Server error"

// writeError maps err onto a status code. Anything unclassified is logged
// and reported as a bare 500 so store details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, account.ErrEmailInUse),
		errors.Is(err, account.ErrInvalidCredentials):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		respond.Error(w, http.StatusInternalServerError, msgServerError)
	}
}

func badJSON(w http.ResponseWriter) {
	respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
}
