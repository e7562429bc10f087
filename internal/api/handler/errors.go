package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stonecluster/internal/api/apierr"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/room"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// roomCodeVar reads the {code} path variable, writing a 400 if it cannot be a room code
func roomCodeVar(w http.ResponseWriter, r *http.Request) (model.RoomCode, bool) {
	code := model.RoomCode(mux.Vars(r)["code"])
	if len(code) != room.CodeLength {
		WriteError(w, apierr.NewInvalidRequestError("room code must be 6 characters"))
		return "", false
	}
	return code, true
}
