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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type StudentsHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

// List also returns every batch and departement so the admin UI can fill
// its filter dropdowns without extra round trips.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	q := r.URL.Query()
	filter := store.StudentFilter{
		Name:       q.Get("qName"),
		Email:      q.Get("qEmail"),
		RollNumber: q.Get("qRollNumber"),
	}
	students, total, err := h.DB.ListStudents(r.Context(), filter, limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	batches, err := h.DB.AllBatches(r.Context())
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	departements, err := h.DB.AllDepartements(r.Context())
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"students":     students,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
		"batches":      batches,
		"departements": departements,
	})
}

func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	student, err := h.DB.StudentByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if student == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Student not found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"student": student})
}

func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validation.StudentInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateStudent(&in); herr != nil {
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
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email is already taken !"))
		return
	}
	taken, err := h.DB.UserByRollNumber(r.Context(), in.RollNumber, nil)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if taken != nil {
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Roll number is already exist"))
		return
	}

	deptID, batchID, herr := h.resolveStudentRefs(r, in.Departement, in.Batch)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.Cfg.BcryptCost)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	now := time.Now()
	user := &models.User{
		Name:          in.Name,
		FatherName:    in.FatherName,
		Email:         in.Email,
		Password:      string(hash),
		Role:          models.RoleStudent,
		AccountStatus: models.AccountActive,
		RollNumber:    in.RollNumber,
		DepartementID: &deptID,
		BatchID:       &batchID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := h.DB.InsertUser(r.Context(), user)
	if err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email is already taken !"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	student, err := h.DB.StudentByID(r.Context(), id)
	if err != nil || student == nil {
		user.ID = id
		writeJSON(w, http.StatusOK, envelope{"student": user})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"student": student})
}

// Update re-validates the full student schema and re-checks uniqueness only
// for fields that actually changed.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	var in validation.StudentInput
	if herr := readJSON(r, &in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if herr := validation.ValidateStudent(&in); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	in.Email = strings.ToLower(in.Email)

	current, err := h.DB.StudentByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if current == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Student not found"))
		return
	}

	if in.Email != current.Email {
		other, err := h.DB.UserByEmail(r.Context(), in.Email, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email is already taken !"))
			return
		}
	}
	if in.RollNumber != current.RollNumber {
		other, err := h.DB.UserByRollNumber(r.Context(), in.RollNumber, &id)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Roll number is already exist"))
			return
		}
	}

	deptID, batchID, herr := h.resolveStudentRefs(r, in.Departement, in.Batch)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.Cfg.BcryptCost)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	user := &models.User{
		Name:          in.Name,
		FatherName:    in.FatherName,
		Email:         in.Email,
		RollNumber:    in.RollNumber,
		DepartementID: &deptID,
		BatchID:       &batchID,
		UpdatedAt:     time.Now(),
	}
	if err := h.DB.UpdateStudent(r.Context(), id, user, string(hash)); err != nil {
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("Email is already taken !"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	student, err := h.DB.StudentByID(r.Context(), id)
	if err != nil || student == nil {
		writeJSON(w, http.StatusOK, envelope{"message": "Student updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"student": student})
}

func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.DeleteUser(r.Context(), id, models.RoleStudent)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Student Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveStudentRefs existence-checks the departement and batch ids; a
// student write must reference records that exist.
func (h *StudentsHandler) resolveStudentRefs(r *http.Request, dept, batch string) (deptID, batchID primitive.ObjectID, herr *httperr.Error) {
	deptID, err := primitive.ObjectIDFromHex(dept)
	if err != nil {
		return deptID, batchID, httperr.BadRequest("invalid departement id")
	}
	batchID, err = primitive.ObjectIDFromHex(batch)
	if err != nil {
		return deptID, batchID, httperr.BadRequest("invalid batch id")
	}
	d, err := h.DB.DepartementByID(r.Context(), deptID)
	if err != nil {
		return deptID, batchID, httperr.Internal(err)
	}
	if d == nil {
		return deptID, batchID, httperr.NotFound("Departement not found")
	}
	b, err := h.DB.BatchByID(r.Context(), batchID)
	if err != nil {
		return deptID, batchID, httperr.Internal(err)
	}
	if b == nil {
		return deptID, batchID, httperr.NotFound("Batch not found")
	}
	return deptID, batchID, nil
}
