package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lms-go/library-backend/config"
	"github.com/lms-go/library-backend/models"
	"github.com/lms-go/library-backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// testEnv wires the handlers against a throwaway database. Tests are
// skipped when no MongoDB is reachable (set MONGODB_TEST_URI to point at
// one; defaults to localhost).
type testEnv struct {
	db     *store.DB
	cfg    *config.Config
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := store.NewMongoDB(ctx, uri, "library_test_"+primitive.NewObjectID().Hex())
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Disconnect(context.Background())
	})
	require.NoError(t, db.EnsureIndexes(context.Background()))

	cfg := &config.Config{
		UploadsDir:   filepath.ToSlash(t.TempDir()),
		MaxUploadMB:  10,
		MaxPageLimit: 100,
		BcryptCost:   bcrypt.MinCost,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := &AuthHandler{DB: db, Logger: logger, JWTSecret: "test-secret"}
	books := &BooksHandler{DB: db, Logger: logger, Cfg: cfg}
	categories := &CategoriesHandler{DB: db, Logger: logger, Cfg: cfg}
	almirahs := &AlmirahsHandler{DB: db, Logger: logger, Cfg: cfg}
	students := &StudentsHandler{DB: db, Logger: logger, Cfg: cfg}
	teachers := &TeachersHandler{DB: db, Logger: logger, Cfg: cfg}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", auth.Login)

		r.Get("/books", books.List)
		r.Post("/books", books.Create)
		r.Get("/books/{id}", books.Get)
		r.Put("/books/{id}", books.Update)
		r.Delete("/books/{id}", books.Delete)

		r.Get("/categories", categories.List)
		r.Post("/categories", categories.Create)

		r.Post("/almirahs", almirahs.Create)

		r.Get("/students", students.List)
		r.Get("/students/sample", students.Sample)
		r.Post("/students", students.Create)
		r.Post("/students/bulk", students.BulkImport)

		r.Post("/teachers", teachers.Create)
	})
	return &testEnv{db: db, cfg: cfg, router: r}
}

func (e *testEnv) seedRefs(t *testing.T) (catID, almID primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	catID, err := e.db.InsertCategory(ctx, &models.Category{Name: "Physics"})
	require.NoError(t, err)
	almID, err = e.db.InsertAlmirah(ctx, &models.Almirah{Number: "A-1", Capacity: 100})
	require.NoError(t, err)
	return catID, almID
}

func (e *testEnv) seedStudentRefs(t *testing.T) (deptID, batchID primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	deptID, err := e.db.InsertDepartement(ctx, &models.Departement{Name: "Computer Science"})
	require.NoError(t, err)
	batchID, err = e.db.InsertBatch(ctx, &models.Batch{Name: "2023"})
	require.NoError(t, err)
	return deptID, batchID
}

func (e *testEnv) doJSON(t *testing.T, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doMultipart(t *testing.T, method, url string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) uploadCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.FromSlash(e.cfg.UploadsDir))
	require.NoError(t, err)
	return len(entries)
}

func bookFields(catID, almID primitive.ObjectID) map[string]string {
	return map[string]string{
		"ISBN":     "978-0",
		"title":    "X",
		"category": catID.Hex(),
		"almirah":  almID.Hex(),
	}
}

func TestCreateBookWithImage(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	w := e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "cover.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Book models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "978-0", resp.Book.ISBN)
	assert.Equal(t, models.BookAvailable, resp.Book.Status)
	require.True(t, strings.HasPrefix(resp.Book.ImagePath, e.cfg.UploadsDir+"/"), resp.Book.ImagePath)
	_, err := os.Stat(filepath.FromSlash(resp.Book.ImagePath))
	require.NoError(t, err)

	require.NotNil(t, resp.Book.Category)
	assert.Equal(t, "Physics", resp.Book.Category.Name)
	require.NotNil(t, resp.Book.Almirah)
	assert.Equal(t, "A-1", resp.Book.Almirah.Number)
}

func TestCreateBookDuplicateISBNReleasesImage(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	w := e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "cover.png")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, e.uploadCount(t))

	w = e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "cover2.png")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ISBN Already exist")
	// The second request's upload must not survive its failure.
	assert.Equal(t, 1, e.uploadCount(t))
}

func TestCreateBookValidationFailureReleasesImage(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	fields := bookFields(catID, almID)
	delete(fields, "title")
	w := e.doMultipart(t, "POST", "/api/books", fields, "cover.png")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
	assert.Equal(t, 0, e.uploadCount(t))
}

func TestBookUpdateSwapsImage(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	w := e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "old.png")
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Book models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	oldPath := created.Book.ImagePath

	fields := bookFields(catID, almID)
	fields["title"] = "X revised"
	w = e.doMultipart(t, "PUT", "/api/books/"+created.Book.ID.Hex(), fields, "new.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Book models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "X revised", updated.Book.Title)
	require.NotEqual(t, oldPath, updated.Book.ImagePath)

	_, err := os.Stat(filepath.FromSlash(oldPath))
	assert.True(t, os.IsNotExist(err), "old image must be deleted")
	_, err = os.Stat(filepath.FromSlash(updated.Book.ImagePath))
	assert.NoError(t, err, "new image must exist")
}

func TestBookUpdateRejectsTakenISBN(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	w := e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "")
	require.Equal(t, http.StatusOK, w.Code)

	fields := bookFields(catID, almID)
	fields["ISBN"] = "978-1"
	w = e.doMultipart(t, "POST", "/api/books", fields, "")
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		Book models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	// Moving the second book onto the first book's ISBN must conflict.
	fields["ISBN"] = "978-0"
	w = e.doMultipart(t, "PUT", "/api/books/"+second.Book.ID.Hex(), fields, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookSoftDelete(t *testing.T) {
	e := newTestEnv(t)
	catID, almID := e.seedRefs(t)

	w := e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		Book models.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	fields := bookFields(catID, almID)
	fields["ISBN"] = "978-1"
	w = e.doMultipart(t, "POST", "/api/books", fields, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.doJSON(t, "DELETE", "/api/books/"+first.Book.ID.Hex(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String(), "204 must carry no body")

	// Hidden from the list...
	w = e.doJSON(t, "GET", "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Books        []models.Book `json:"books"`
		TotalRecords int64         `json:"totalRecords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Books, 1)
	assert.Equal(t, int64(1), list.TotalRecords)

	// ...but still retrievable by id, and its ISBN stays blocked.
	w = e.doJSON(t, "GET", "/api/books/"+first.Book.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.doMultipart(t, "POST", "/api/books", bookFields(catID, almID), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func studentRow(n string, deptID, batchID primitive.ObjectID) map[string]string {
	return map[string]string{
		"name":        "Student " + n,
		"fatherName":  "Father " + n,
		"email":       "student" + n + "@example.com",
		"password":    "Password123",
		"rollNumber":  "2023" + n,
		"departement": deptID.Hex(),
		"batch":       batchID.Hex(),
	}
}

func TestCreateStudentHashesPassword(t *testing.T) {
	e := newTestEnv(t)
	deptID, batchID := e.seedStudentRefs(t)

	w := e.doJSON(t, "POST", "/api/students", studentRow("001", deptID, batchID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password", "password must never be serialized")

	u, err := e.db.UserByEmail(context.Background(), "student001@example.com", nil)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, "Password123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Password123")))
}

func TestCreateStudentDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	deptID, batchID := e.seedStudentRefs(t)

	w := e.doJSON(t, "POST", "/api/students", studentRow("001", deptID, batchID))
	require.Equal(t, http.StatusOK, w.Code)

	row := studentRow("002", deptID, batchID)
	row["email"] = "Student001@example.com" // same address, different case
	w = e.doJSON(t, "POST", "/api/students", row)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Email is already taken")
}

func TestBulkImportPartialFailure(t *testing.T) {
	e := newTestEnv(t)
	deptID, batchID := e.seedStudentRefs(t)

	rows := []map[string]string{
		studentRow("001", deptID, batchID),
		studentRow("002", deptID, batchID),
		studentRow("003", deptID, batchID),
	}
	rows[1]["rollNumber"] = rows[0]["rollNumber"] // duplicate within payload
	rows[2]["departement"] = "No Such Departement"

	w := e.doJSON(t, "POST", "/api/students/bulk", map[string]any{"students": rows})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result BulkImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, rows[1]["rollNumber"], result.Errors[0].RollNumber)
	assert.Equal(t, "Roll number already exists", result.Errors[0].Error)
	assert.Equal(t, rows[2]["rollNumber"], result.Errors[1].RollNumber)
	assert.Equal(t, "Invalid departement: No Such Departement", result.Errors[1].Error)

	_, total, err := e.db.ListStudents(context.Background(), store.StudentFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBulkImportResolvesByName(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.seedStudentRefs(t)

	row := map[string]string{
		"name":        "  Sara Khan  ", // importer trims
		"fatherName":  "Khan Muhammad",
		"email":       "SARA.KHAN@example.com",
		"password":    "Password123",
		"rollNumber":  "2023042",
		"departement": "Computer Science",
		"batch":       "2023",
	}
	w := e.doJSON(t, "POST", "/api/students/bulk", map[string]any{"students": []map[string]string{row}})
	require.Equal(t, http.StatusOK, w.Code)

	var result BulkImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 0, result.Failed)

	u, err := e.db.UserByEmail(context.Background(), "sara.khan@example.com", nil)
	require.NoError(t, err)
	require.NotNil(t, u, "email must be lowercased on insert")
	assert.Equal(t, "Sara Khan", u.Name)
}

func TestBulkImportRejectsEmptyPayload(t *testing.T) {
	e := newTestEnv(t)
	w := e.doJSON(t, "POST", "/api/students/bulk", map[string]any{"students": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid student data")
}

func TestStudentListPagination(t *testing.T) {
	e := newTestEnv(t)
	deptID, batchID := e.seedStudentRefs(t)

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		n := string(rune('a'+i/10)) + string(rune('0'+i%10))
		_, err := e.db.InsertUser(ctx, &models.User{
			Name:          "Student " + n,
			FatherName:    "Father " + n,
			Email:         "s" + n + "@example.com",
			Password:      "irrelevant",
			Role:          models.RoleStudent,
			AccountStatus: models.AccountActive,
			RollNumber:    "r" + n,
			DepartementID: &deptID,
			BatchID:       &batchID,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		})
		require.NoError(t, err)
	}

	var list struct {
		Students     []models.Student `json:"students"`
		TotalRecords int64            `json:"totalRecords"`
		TotalPages   int64            `json:"totalPages"`
	}
	w := e.doJSON(t, "GET", "/api/students?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Students, 10)
	assert.Equal(t, int64(25), list.TotalRecords)
	assert.Equal(t, int64(3), list.TotalPages)

	w = e.doJSON(t, "GET", "/api/students?page=3&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Students, 5)
}

func TestSampleTemplate(t *testing.T) {
	e := newTestEnv(t)

	// Without a departement and batch on record, the admin is told to
	// create them first.
	w := e.doJSON(t, "GET", "/api/students/sample", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	deptID, batchID := e.seedStudentRefs(t)
	w = e.doJSON(t, "GET", "/api/students/sample", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Students []map[string]string `json:"students"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Students, 10)
	assert.Equal(t, "2023001", resp.Students[0]["rollNumber"])
	for _, s := range resp.Students {
		assert.Equal(t, deptID.Hex(), s["departement"])
		assert.Equal(t, batchID.Hex(), s["batch"])
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = e.db.InsertUser(context.Background(), &models.User{
		Name:          "Admin",
		Email:         "admin@example.com",
		Password:      string(hash),
		Role:          models.RoleAdmin,
		AccountStatus: models.AccountActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	require.NoError(t, err)

	w := e.doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email": "Admin@example.com", "password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, "admin@example.com", resp.Email)

	w = e.doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email": "admin@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryCreateConflict(t *testing.T) {
	e := newTestEnv(t)

	w := e.doJSON(t, "POST", "/api/categories", map[string]string{"name": "History"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.doJSON(t, "POST", "/api/categories", map[string]string{"name": "History"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Category Name is Already Exist")
}

func TestTeacherCreate(t *testing.T) {
	e := newTestEnv(t)

	body := map[string]string{"name": "Dr. Khan", "email": "khan@uni.edu", "password": "secret1"}
	w := e.doJSON(t, "POST", "/api/teachers", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A student cannot reuse a teacher's email: uniqueness spans roles.
	deptID, batchID := e.seedStudentRefs(t)
	row := studentRow("001", deptID, batchID)
	row["email"] = "khan@uni.edu"
	w = e.doJSON(t, "POST", "/api/students", row)
	assert.Equal(t, http.StatusConflict, w.Code)
}
