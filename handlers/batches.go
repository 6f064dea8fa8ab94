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

type BatchesHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

func (h *BatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	batches, total, err := h.DB.ListBatches(r.Context(), r.URL.Query().Get("q"), limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"batches":      batches,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *BatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	batch, err := h.DB.BatchByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if batch == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Batch not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"batch": batch})
}

func (h *BatchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.BatchInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateBatch(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	existing, err := h.DB.BatchByName(r.Context(), in.Name, nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if existing != nil {
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Batch name already exists"))
		return
	}
	batch := &models.Batch{Name: in.Name}
	id, err := h.DB.InsertBatch(r.Context(), batch)
	if err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Batch name already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	batch.ID = id
	writeJSON(w, http.StatusOK, envelope{"batch": batch})
}

func (h *BatchesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.BatchInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateBatch(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	batch, err := h.DB.BatchByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if batch == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Batch not found"))
		return
	}
	if in.Name != batch.Name {
		other, err := h.DB.BatchByName(r.Context(), in.Name, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Batch name already exists"))
			return
		}
	}
	batch.Name = in.Name
	if err := h.DB.UpdateBatch(r.Context(), id, batch); err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Batch name already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"batch": batch})
}

func (h *BatchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteBatch(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Batch Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
