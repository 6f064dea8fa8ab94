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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DepartementsHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

func (h *DepartementsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	departements, total, err := h.DB.ListDepartements(r.Context(), r.URL.Query().Get("q"), limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if departements == nil {
		departements = []models.Departement{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"departements": departements,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *DepartementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	departement, err := h.DB.DepartementByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if departement == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Departement not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"departement": departement})
}

func (h *DepartementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.DepartementInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateDepartement(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	hod, herr := h.parseHOD(in.HOD)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	existing, err := h.DB.DepartementByName(r.Context(), in.Name, nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if existing != nil {
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Departement name already exists"))
		return
	}
	departement := &models.Departement{Name: in.Name, HOD: hod}
	id, err := h.DB.InsertDepartement(r.Context(), departement)
	if err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Departement name already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	departement.ID = id
	writeJSON(w, http.StatusOK, envelope{"departement": departement})
}

func (h *DepartementsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.DepartementInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateDepartement(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	hod, herr := h.parseHOD(in.HOD)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	departement, err := h.DB.DepartementByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if departement == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Departement not found"))
		return
	}
	if in.Name != departement.Name {
		other, err := h.DB.DepartementByName(r.Context(), in.Name, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Departement name already exists"))
			return
		}
	}
	departement.Name = in.Name
	departement.HOD = hod
	if err := h.DB.UpdateDepartement(r.Context(), id, departement); err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Departement name already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"departement": departement})
}

func (h *DepartementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteDepartement(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Departement Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DepartementsHandler) parseHOD(v string) (*primitive.ObjectID, *httperr.Error) {
	if v == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil, httperr.BadRequest("invalid hod id")
	}
	return &id, nil
}
