package handlers

import (
	"net/http"

	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/validation"
)

// sampleStudents drive the downloadable import template. Roll numbers run
// 2023001..2023010 and emails follow firstname.lastname@example.com.
var sampleStudents = []struct {
	name       string
	fatherName string
	email      string
	rollNumber string
}{
	{"Ahmed Hassan", "Hassan Ahmed", "ahmed.hassan@example.com", "2023001"},
	{"Sara Khan", "Khan Muhammad", "sara.khan@example.com", "2023002"},
	{"Ali Muhammad", "Muhammad Ali", "ali.muhammad@example.com", "2023003"},
	{"Fatima Ahmed", "Ahmed Khalid", "fatima.ahmed@example.com", "2023004"},
	{"Omar Hassan", "Hassan Ibrahim", "omar.hassan@example.com", "2023005"},
	{"Zainab Khan", "Khan Karim", "zainab.khan@example.com", "2023006"},
	{"Ibrahim Ali", "Ali Rashid", "ibrahim.ali@example.com", "2023007"},
	{"Amira Hassan", "Hassan Samir", "amira.hassan@example.com", "2023008"},
	{"Karim Ahmed", "Ahmed Jamal", "karim.ahmed@example.com", "2023009"},
	{"Noor Muhammad", "Muhammad Hasan", "noor.muhammad@example.com", "2023010"},
}

// Sample returns ten example rows wired to the first departement and batch
// on record, for the admin to download as an import template.
func (h *StudentsHandler) Sample(w http.ResponseWriter, r *http.Request) {
	dept, err := h.DB.FirstDepartement(r.Context())
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	batch, err := h.DB.FirstBatch(r.Context())
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if dept == nil || batch == nil {
		httperr.Write(w, r, h.Logger,
			httperr.BadRequest("No departements or batches found. Please create them first."))
		return
	}

	students := make([]validation.StudentInput, 0, len(sampleStudents))
	for _, s := range sampleStudents {
		students = append(students, validation.StudentInput{
			Name:        s.name,
			FatherName:  s.fatherName,
			Email:       s.email,
			RollNumber:  s.rollNumber,
			Departement: dept.ID.Hex(),
			Batch:       batch.ID.Hex(),
			Password:    "Password123",
		})
	}
	writeJSON(w, http.StatusOK, envelope{"students": students})
}
