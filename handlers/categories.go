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

type CategoriesHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	categories, total, err := h.DB.ListCategories(r.Context(), r.URL.Query().Get("q"), limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"categories":   categories,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	category, err := h.DB.CategoryByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if category == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Category not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"category": category})
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.CategoryInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateCategory(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	existing, err := h.DB.CategoryByName(r.Context(), in.Name, nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if existing != nil {
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Category Name is Already Exist"))
		return
	}
	category := &models.Category{Name: in.Name}
	id, err := h.DB.InsertCategory(r.Context(), category)
	if err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Category Name is Already Exist"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	category.ID = id
	writeJSON(w, http.StatusCreated, envelope{"category": category})
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.CategoryInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateCategory(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	category, err := h.DB.CategoryByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if category == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Category not found"))
		return
	}
	if in.Name != category.Name {
		other, err := h.DB.CategoryByName(r.Context(), in.Name, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Category Name is Already Exist"))
			return
		}
	}
	category.Name = in.Name
	if err := h.DB.UpdateCategory(r.Context(), id, category); err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Category Name is Already Exist"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"category": category})
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteCategory(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Category Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
