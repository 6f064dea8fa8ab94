package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/metrics"
	"github.com/lms-go/library-backend/models"
	"github.com/lms-go/library-backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type BulkImportRequest struct {
	Students []validation.StudentInput `json:"students"`
}

type BulkRowError struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Error      string `json:"error"`
}

type BulkImportResult struct {
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Errors     []BulkRowError `json:"errors"`
}

// BulkImport inserts spreadsheet-derived student rows one by one, collecting
// per-row errors and carrying on. Rows run strictly in input order so error
// ordering is deterministic and a duplicate within the payload fails on its
// second occurrence. Nothing is transactional: rows that succeeded stay.
func (h *StudentsHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req BulkImportRequest
	if herr := readJSON(r, &req); herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if len(req.Students) == 0 {
		httperr.Write(w, r, h.Logger, httperr.BadRequest("Invalid student data"))
		return
	}

	result := BulkImportResult{Errors: []BulkRowError{}}
	fail := func(row *validation.StudentInput, msg string) {
		result.Failed++
		metrics.BulkImportRows.WithLabelValues("failed").Inc()
		rollNumber, name := row.RollNumber, row.Name
		if rollNumber == "" {
			rollNumber = "N/A"
		}
		if name == "" {
			name = "N/A"
		}
		result.Errors = append(result.Errors, BulkRowError{RollNumber: rollNumber, Name: name, Error: msg})
	}

	for i := range req.Students {
		row := &req.Students[i]
		row.Trim()

		if herr := validation.ValidateStudent(row); herr != nil {
			fail(row, herr.Message)
			continue
		}
		row.Email = strings.ToLower(row.Email)

		existing, err := h.DB.UserByEmail(r.Context(), row.Email, nil)
		if err != nil {
			fail(row, err.Error())
			continue
		}
		if existing != nil {
			fail(row, "Email is already taken")
			continue
		}
		taken, err := h.DB.UserByRollNumber(r.Context(), row.RollNumber, nil)
		if err != nil {
			fail(row, err.Error())
			continue
		}
		if taken != nil {
			fail(row, "Roll number already exists")
			continue
		}

		deptID, ok, err := h.resolveDepartement(r, row.Departement)
		if err != nil {
			fail(row, err.Error())
			continue
		}
		if !ok {
			fail(row, "Invalid departement: "+row.Departement)
			continue
		}
		batchID, ok, err := h.resolveBatch(r, row.Batch)
		if err != nil {
			fail(row, err.Error())
			continue
		}
		if !ok {
			fail(row, "Invalid batch: "+row.Batch)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(row.Password), h.Cfg.BcryptCost)
		if err != nil {
			fail(row, err.Error())
			continue
		}
		now := time.Now()
		user := &models.User{
			Name:          row.Name,
			FatherName:    row.FatherName,
			Email:         row.Email,
			Password:      string(hash),
			Role:          models.RoleStudent,
			AccountStatus: models.AccountActive,
			RollNumber:    row.RollNumber,
			DepartementID: &deptID,
			BatchID:       &batchID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := h.DB.InsertUser(r.Context(), user); err != nil {
			fail(row, err.Error())
			continue
		}
		result.Successful++
		metrics.BulkImportRows.WithLabelValues("successful").Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

// resolveDepartement accepts either an object id or an exact departement
// name; ids are tried first.
func (h *StudentsHandler) resolveDepartement(r *http.Request, v string) (primitive.ObjectID, bool, error) {
	if id, err := primitive.ObjectIDFromHex(v); err == nil {
		d, err := h.DB.DepartementByID(r.Context(), id)
		if err != nil {
			return primitive.NilObjectID, false, err
		}
		if d != nil {
			return d.ID, true, nil
		}
	}
	d, err := h.DB.DepartementByName(r.Context(), v, nil)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if d == nil {
		return primitive.NilObjectID, false, nil
	}
	return d.ID, true, nil
}

func (h *StudentsHandler) resolveBatch(r *http.Request, v string) (primitive.ObjectID, bool, error) {
	if id, err := primitive.ObjectIDFromHex(v); err == nil {
		b, err := h.DB.BatchByID(r.Context(), id)
		if err != nil {
			return primitive.NilObjectID, false, err
		}
		if b != nil {
			return b.ID, true, nil
		}
	}
	b, err := h.DB.BatchByName(r.Context(), v, nil)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	if b == nil {
		return primitive.NilObjectID, false, nil
	}
	return b.ID, true, nil
}
