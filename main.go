package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/lms-go/library-backend/config"
	"github.com/lms-go/library-backend/handlers"
	"github.com/lms-go/library-backend/logger"
	"github.com/lms-go/library-backend/metrics"
	"github.com/lms-go/library-backend/middleware"
	"github.com/lms-go/library-backend/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	slogger := logger.New(cfg.Env)

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes:", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatal("uploads dir:", err)
	}

	metrics.Init()

	authHandler := &handlers.AuthHandler{DB: db, Logger: slogger, JWTSecret: cfg.JWTSecret}
	booksHandler := &handlers.BooksHandler{DB: db, Logger: slogger, Cfg: cfg}
	categoriesHandler := &handlers.CategoriesHandler{DB: db, Logger: slogger, Cfg: cfg}
	almirahsHandler := &handlers.AlmirahsHandler{DB: db, Logger: slogger, Cfg: cfg}
	studentsHandler := &handlers.StudentsHandler{DB: db, Logger: slogger, Cfg: cfg}
	teachersHandler := &handlers.TeachersHandler{DB: db, Logger: slogger, Cfg: cfg}
	departementsHandler := &handlers.DepartementsHandler{DB: db, Logger: slogger, Cfg: cfg}
	batchesHandler := &handlers.BatchesHandler{DB: db, Logger: slogger, Cfg: cfg}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.HTTPMetrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, slogger))

			r.Get("/books", booksHandler.List)
			r.Get("/books/{id}", booksHandler.Get)
			r.Get("/categories", categoriesHandler.List)
			r.Get("/categories/{id}", categoriesHandler.Get)
			r.Get("/almirahs", almirahsHandler.List)
			r.Get("/almirahs/{id}", almirahsHandler.Get)

			// Admin-only management surface
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(slogger))

				r.Post("/books", booksHandler.Create)
				r.Put("/books/{id}", booksHandler.Update)
				r.Delete("/books/{id}", booksHandler.Delete)

				r.Post("/categories", categoriesHandler.Create)
				r.Put("/categories/{id}", categoriesHandler.Update)
				r.Delete("/categories/{id}", categoriesHandler.Delete)

				r.Post("/almirahs", almirahsHandler.Create)
				r.Put("/almirahs/{id}", almirahsHandler.Update)
				r.Delete("/almirahs/{id}", almirahsHandler.Delete)

				r.Get("/students", studentsHandler.List)
				r.Get("/students/sample", studentsHandler.Sample)
				r.Post("/students", studentsHandler.Create)
				r.Post("/students/bulk", studentsHandler.BulkImport)
				r.Get("/students/{id}", studentsHandler.Get)
				r.Put("/students/{id}", studentsHandler.Update)
				r.Delete("/students/{id}", studentsHandler.Delete)

				r.Get("/teachers", teachersHandler.List)
				r.Get("/teachers/{id}", teachersHandler.Get)
				r.Post("/teachers", teachersHandler.Create)
				r.Put("/teachers/{id}", teachersHandler.Update)
				r.Delete("/teachers/{id}", teachersHandler.Delete)

				r.Get("/departements", departementsHandler.List)
				r.Get("/departements/{id}", departementsHandler.Get)
				r.Post("/departements", departementsHandler.Create)
				r.Put("/departements/{id}", departementsHandler.Update)
				r.Delete("/departements/{id}", departementsHandler.Delete)

				r.Get("/batches", batchesHandler.List)
				r.Get("/batches/{id}", batchesHandler.Get)
				r.Post("/batches", batchesHandler.Create)
				r.Put("/batches/{id}", batchesHandler.Update)
				r.Delete("/batches/{id}", batchesHandler.Delete)
			})
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Bulk imports can run long; keep the write window generous.
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  time.Minute,
	}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
