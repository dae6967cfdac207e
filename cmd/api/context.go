package main

import (
	"context"
	"net/http"
)

type contextKey string

const adminContextKey = contextKey("admin")

// adminIdentity is the authenticated caller for the current request. The
// zero value is the anonymous caller.
type adminIdentity struct {
	ID       string
	Username string
}

func (a adminIdentity) IsAnonymous() bool {
	return a.ID == ""
}

func (app *application) contextSetAdmin(r *http.Request, admin adminIdentity) *http.Request {
	ctx := context.WithValue(r.Context(), adminContextKey, admin)
	return r.WithContext(ctx)
}

func (app *application) contextGetAdmin(r *http.Request) adminIdentity {
	admin, ok := r.Context().Value(adminContextKey).(adminIdentity)
	if !ok {
		panic("missing admin value in request context")
	}
	return admin
}
