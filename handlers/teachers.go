package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lms-go/library-backend/config"
	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/models"
	"github.com/lms-go/library-backend/store"
	"github.com/lms-go/library-backend/utils"
	"github.com/lms-go/library-backend/validation"
	"golang.org/x/crypto/bcrypt"
)

type TeachersHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

func (h *TeachersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	q := r.URL.Query()
	filter := store.TeacherFilter{
		Name:  q.Get("qName"),
		Email: q.Get("qEmail"),
	}
	teachers, total, err := h.DB.ListTeachers(r.Context(), filter, limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if teachers == nil {
		teachers = []models.User{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"teachers":     teachers,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *TeachersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	teacher, err := h.DB.TeacherByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if teacher == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Teacher not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"teacher": teacher})
}

func (h *TeachersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.TeacherInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateTeacher(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	in.Email = strings.ToLower(in.Email)

	existing, err := h.DB.UserByEmail(r.Context(), in.Email, nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if existing != nil {
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email already exists"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.Cfg.BcryptCost)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	now := time.Now()
	teacher := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		Password:      string(hash),
		Role:          models.RoleTeacher,
		AccountStatus: models.AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := h.DB.InsertUser(r.Context(), teacher)
	if err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	teacher.ID = id
	writeJSON(w, http.StatusOK, envelope{"teacher": teacher})
}

func (h *TeachersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.TeacherInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateTeacher(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	in.Email = strings.ToLower(in.Email)

	current, err := h.DB.TeacherByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if current == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Teacher not found"))
		return
	}
	if in.Email != current.Email {
		other, err := h.DB.UserByEmail(r.Context(), in.Email, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email already exists"))
			return
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.Cfg.BcryptCost)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	teacher := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		UpdatedAt: time.Now(),
	}
	if err := h.DB.UpdateTeacher(r.Context(), id, teacher, string(hash)); err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email already exists"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	fresh, err := h.DB.TeacherByID(r.Context(), id)
	if err != nil || fresh == nil {
		writeJSON(w, http.StatusOK, envelope{"message": "Teacher updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"teacher": fresh})
}

func (h *TeachersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteUser(r.Context(), id, models.RoleTeacher)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Teacher Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
