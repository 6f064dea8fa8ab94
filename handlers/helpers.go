package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lms-go/library-backend/httperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// envelope is the top-level JSON wrapper for responses, e.g. {"book": {...}}
// or {"books": [...], "totalRecords": n}.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, dst any) *httperr.Error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return httperr.BadRequest("invalid json body")
	}
	return nil
}

// idParam extracts the {id} route parameter as an ObjectID.
func idParam(r *http.Request) (primitive.ObjectID, *httperr.Error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, httperr.BadRequest("invalid id")
	}
	return id, nil
}
