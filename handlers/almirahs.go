package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lms-go/library-backend/config"
	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/models"
	"github.com/lms-go/library-backend/store"
	"github.com/lms-go/library-backend/utils"
	"github.com/lms-go/library-backend/validation"
)

type AlmirahsHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

func (h *AlmirahsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	almirahs, total, err := h.DB.ListAlmirahs(r.Context(), r.URL.Query().Get("q"), limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if almirahs == nil {
		almirahs = []models.Almirah{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"almirahs":     almirahs,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *AlmirahsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	almirah, err := h.DB.AlmirahByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if almirah == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Almirah not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"almirah": almirah})
}

func (h *AlmirahsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.AlmirahInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateAlmirah(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	almirah := &models.Almirah{Number: in.Number, Subject: in.Subject, Capacity: in.Capacity}
	id, err := h.DB.InsertAlmirah(r.Context(), almirah)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	almirah.ID = id
	writeJSON(w, http.StatusOK, envelope{"almirah": almirah})
}

func (h *AlmirahsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.AlmirahInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateAlmirah(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	almirah, err := h.DB.AlmirahByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if almirah == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Almirah not found"))
		return
	}
	almirah.Number = in.Number
	almirah.Subject = in.Subject
	almirah.Capacity = in.Capacity
	if err := h.DB.UpdateAlmirah(r.Context(), id, almirah); err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"almirah": almirah})
}

func (h *AlmirahsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteAlmirah(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Almirah Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
