package main

import (
	"net/http"

	"CricketScoreApi/internal/ids"
	"CricketScoreApi/internal/validator"
)

// LoginAdmin exchanges a username for the admin identity used as the bearer
// token on every authenticated request. There is no password; the ID is a
// reversible encoding of the username and logging in as any name is allowed.
func (app *application) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Username != "", "username", "must be provided")
	v.Check(len(input.Username) <= 50, "username", "must not be more than 50 characters long")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	adminID := ids.EncodeAdminID(input.Username)

	admin, err := app.models.Admins.GetOrCreate(r.Context(), adminID, input.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"adminId":          adminID,
		"username":         admin.Username,
		"createdAtEpochMs": admin.CreatedAt,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
