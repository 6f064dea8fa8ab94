// Package validation holds the write-shape schemas for every entity.
// Checks run in declaration order and the first failing field's message
// is the one surfaced, so clients always see a single actionable error.
package validation

import (
	"regexp"
	"strings"

	"github.com/lms-go/library-backend/httperr"
)

// EmailRX is a basic RFC-shaped email pattern.
var EmailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const (
	MinPasswordLen = 6
	MaxNameLen     = 100
)

type check struct {
	ok  bool
	msg string
}

func first(checks ...check) *httperr.Error {
	for _, c := range checks {
		if !c.ok {
			return httperr.Validation(c.msg)
		}
	}
	return nil
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

type BookInput struct {
	ISBN     string `json:"ISBN"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Edition  string `json:"edition"`
	Status   string `json:"status"`
	Category string `json:"category"`
	Almirah  string `json:"almirah"`
}

func ValidateBook(in *BookInput, statuses []string) *httperr.Error {
	statusOK := in.Status == ""
	for _, s := range statuses {
		if in.Status == s {
			statusOK = true
		}
	}
	return first(
		check{present(in.ISBN), "ISBN is required"},
		check{present(in.Title), "title is required"},
		check{len(in.Title) <= 200, "title must be at most 200 characters"},
		check{statusOK, "status must be one of " + strings.Join(statuses, ", ")},
		check{present(in.Category), "category is required"},
		check{present(in.Almirah), "almirah is required"},
	)
}

type CategoryInput struct {
	Name string `json:"name"`
}

func ValidateCategory(in *CategoryInput) *httperr.Error {
	return first(
		check{present(in.Name), "name is required"},
		check{len(in.Name) <= MaxNameLen, "name must be at most 100 characters"},
	)
}

type AlmirahInput struct {
	Number   string `json:"number"`
	Subject  string `json:"subject"`
	Capacity int    `json:"capacity"`
}

func ValidateAlmirah(in *AlmirahInput) *httperr.Error {
	return first(
		check{present(in.Number), "number is required"},
		check{in.Capacity >= 0, "capacity must not be negative"},
	)
}

type StudentInput struct {
	Name        string `json:"name"`
	FatherName  string `json:"fatherName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RollNumber  string `json:"rollNumber"`
	Departement string `json:"departement"`
	Batch       string `json:"batch"`
}

// Trim removes surrounding whitespace from every field; the bulk importer
// calls it on each row before validating.
func (in *StudentInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.FatherName = strings.TrimSpace(in.FatherName)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.RollNumber = strings.TrimSpace(in.RollNumber)
	in.Departement = strings.TrimSpace(in.Departement)
	in.Batch = strings.TrimSpace(in.Batch)
}

func ValidateStudent(in *StudentInput) *httperr.Error {
	return first(
		check{present(in.Name), "name is required"},
		check{len(in.Name) <= MaxNameLen, "name must be at most 100 characters"},
		check{present(in.FatherName), "fatherName is required"},
		check{present(in.Email), "email is required"},
		check{EmailRX.MatchString(in.Email), "email must be a valid email address"},
		check{present(in.Password), "password is required"},
		check{len(in.Password) >= MinPasswordLen, "password must be at least 6 characters"},
		check{present(in.RollNumber), "rollNumber is required"},
		check{present(in.Departement), "departement is required"},
		check{present(in.Batch), "batch is required"},
	)
}

type TeacherInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func ValidateTeacher(in *TeacherInput) *httperr.Error {
	return first(
		check{present(in.Name), "name is required"},
		check{len(in.Name) <= MaxNameLen, "name must be at most 100 characters"},
		check{present(in.Email), "email is required"},
		check{EmailRX.MatchString(in.Email), "email must be a valid email address"},
		check{present(in.Password), "password is required"},
		check{len(in.Password) >= MinPasswordLen, "password must be at least 6 characters"},
	)
}

type DepartementInput struct {
	Name string `json:"name"`
	HOD  string `json:"hod"`
}

func ValidateDepartement(in *DepartementInput) *httperr.Error {
	return first(
		check{present(in.Name), "name is required"},
		check{len(in.Name) <= MaxNameLen, "name must be at most 100 characters"},
	)
}

type BatchInput struct {
	Name string `json:"name"`
}

func ValidateBatch(in *BatchInput) *httperr.Error {
	return first(
		check{present(in.Name), "name is required"},
		check{len(in.Name) <= MaxNameLen, "name must be at most 100 characters"},
	)
}
