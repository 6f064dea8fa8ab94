package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lms-go/library-backend/config"
	"github.com/lms-go/library-backend/httperr"
	"github.com/lms-go/library-backend/metrics"
	"github.com/lms-go/library-backend/models"
	"github.com/lms-go/library-backend/store"
	"github.com/lms-go/library-backend/utils"
	"github.com/lms-go/library-backend/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BooksHandler struct {
	DB     *store.DB
	Logger *slog.Logger
	Cfg    *config.Config
}

// release deletes an intake file after a failed request. Best effort.
func (h *BooksHandler) release(imagePath string) {
	if imagePath == "" {
		return
	}
	utils.RemoveFile(h.Logger, imagePath)
	metrics.UploadsReleased.Inc()
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, skip := utils.Paginate(r, h.Cfg.MaxPageLimit)
	q := r.URL.Query()
	filter := store.BookFilter{
		ISBN:   q.Get("qISBN"),
		Title:  q.Get("qTitle"),
		Status: q.Get("qStatus"),
	}
	if v := q.Get("qCategory"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.BadRequest("invalid category filter"))
			return
		}
		filter.Category = &id
	}
	if v := q.Get("qAlmirah"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			httperr.Write(w, r, h.Logger, httperr.BadRequest("invalid almirah filter"))
			return
		}
		filter.Almirah = &id
	}

	books, total, err := h.DB.ListBooks(r.Context(), filter, limit, skip)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	writeJSON(w, http.StatusOK, envelope{
		"books":        books,
		"page":         page,
		"limit":        limit,
		"totalRecords": total,
		"totalPages":   utils.TotalPages(total, limit),
	})
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if book == nil {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Book Not Found"))
		return
	}
	writeJSON(w, http.StatusOK, envelope{"book": book})
}

// Create accepts multipart form data: book fields as text parts plus an
// optional "image" file. If anything fails after the image was written, the
// file is removed before the error goes out.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	imagePath, herr := utils.SaveImage(r, w, h.Cfg.UploadsDir, h.Cfg.MaxUploadBytes())
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if imagePath != "" {
		metrics.UploadsSaved.Inc()
	}

	in := bookInputFromForm(r)
	if herr := validation.ValidateBook(in, models.BookStatuses); herr != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	catID, almID, herr := h.resolveBookRefs(r, in)
	if herr != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, herr)
		return
	}

	existing, err := h.DB.BookByISBN(r.Context(), in.ISBN, nil)
	if err != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if existing != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, httperr.AlreadyExist("ISBN Already exist"))
		return
	}

	now := time.Now()
	status := in.Status
	if status == "" {
		status = models.BookAvailable
	}
	book := &models.Book{
		ISBN:       in.ISBN,
		Title:      in.Title,
		Author:     in.Author,
		Edition:    in.Edition,
		Status:     status,
		CategoryID: catID,
		AlmirahID:  almID,
		ImagePath:  imagePath,
		IsDeleted:  false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		h.release(imagePath)
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("ISBN Already exist"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	book.ID = id

	created, err := h.DB.BookByID(r.Context(), id)
	if err != nil || created == nil {
		// The insert committed; fall back to the unexpanded document.
		writeJSON(w, http.StatusOK, envelope{"book": book})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"book": created})
}

// Update is a full replacement: the complete book schema is re-validated. A
// new image, when uploaded, replaces the old file only after the new path
// has been committed.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	imagePath, herr := utils.SaveImage(r, w, h.Cfg.UploadsDir, h.Cfg.MaxUploadBytes())
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	if imagePath != "" {
		metrics.UploadsSaved.Inc()
	}

	id, herr := idParam(r)
	if herr != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	in := bookInputFromForm(r)
	if herr := validation.ValidateBook(in, models.BookStatuses); herr != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, herr)
		return
	}

	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if book == nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, httperr.NotFound("Book Not Found"))
		return
	}

	if in.ISBN != book.ISBN {
		other, err := h.DB.BookByISBN(r.Context(), in.ISBN, &id)
		if err != nil {
			h.release(imagePath)
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		if other != nil {
			h.release(imagePath)
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("ISBN Already exist"))
			return
		}
	}
	catID, almID, herr := h.resolveBookRefs(r, in)
	if herr != nil {
		h.release(imagePath)
		httperr.Write(w, r, h.Logger, herr)
		return
	}

	updated := &models.Book{
		ISBN:       in.ISBN,
		Title:      in.Title,
		Author:     in.Author,
		Edition:    in.Edition,
		Status:     in.Status,
		CategoryID: catID,
		AlmirahID:  almID,
		UpdatedAt:  time.Now(),
	}
	if updated.Status == "" {
		updated.Status = book.Status
	}
	if err := h.DB.UpdateBook(r.Context(), id, updated); err != nil {
		h.release(imagePath)
		if store.IsDuplicateKey(err) {
			httperr.Write(w, r, h.Logger, httperr.AlreadyExist("ISBN Already exist"))
			return
		}
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}

	// Swap the image only after the record update committed; the old file
	// goes away last so a failure never leaves the record pointing nowhere.
	if imagePath != "" {
		if err := h.DB.SetBookImagePath(r.Context(), id, imagePath); err != nil {
			h.release(imagePath)
			httperr.Write(w, r, h.Logger, httperr.Internal(err))
			return
		}
		utils.RemoveFile(h.Logger, book.ImagePath)
	}

	fresh, err := h.DB.BookByID(r.Context(), id)
	if err != nil || fresh == nil {
		writeJSON(w, http.StatusOK, envelope{"message": "Book updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"book": fresh})
}

// Delete soft-deletes: the record and its ISBN stay behind, hidden from
// lists.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, herr := idParam(r)
	if herr != nil {
		httperr.Write(w, r, h.Logger, herr)
		return
	}
	found, err := h.DB.SoftDeleteBook(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Logger, httperr.Internal(err))
		return
	}
	if !found {
		httperr.Write(w, r, h.Logger, httperr.NotFound("Book Not Found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func bookInputFromForm(r *http.Request) *validation.BookInput {
	return &validation.BookInput{
		ISBN:     r.FormValue("ISBN"),
		Title:    r.FormValue("title"),
		Author:   r.FormValue("author"),
		Edition:  r.FormValue("edition"),
		Status:   r.FormValue("status"),
		Category: r.FormValue("category"),
		Almirah:  r.FormValue("almirah"),
	}
}

// resolveBookRefs parses and existence-checks the category and almirah
// references; a book write must point at records that exist.
func (h *BooksHandler) resolveBookRefs(r *http.Request, in *validation.BookInput) (catID, almID primitive.ObjectID, herr *httperr.Error) {
	catID, err := primitive.ObjectIDFromHex(in.Category)
	if err != nil {
		return catID, almID, httperr.BadRequest("invalid category id")
	}
	almID, err = primitive.ObjectIDFromHex(in.Almirah)
	if err != nil {
		return catID, almID, httperr.BadRequest("invalid almirah id")
	}
	cat, err := h.DB.CategoryByID(r.Context(), catID)
	if err != nil {
		return catID, almID, httperr.Internal(err)
	}
	if cat == nil {
		return catID, almID, httperr.NotFound("Category not found")
	}
	alm, err := h.DB.AlmirahByID(r.Context(), almID)
	if err != nil {
		return catID, almID, httperr.Internal(err)
	}
	if alm == nil {
		return catID, almID, httperr.NotFound("Almirah not found")
	}
	return catID, almID, nil
}
