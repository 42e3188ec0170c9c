package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/chisomo/mercato-backend/internal/modules/attribute"
	"github.com/chisomo/mercato-backend/internal/modules/catalog"
	"github.com/chisomo/mercato-backend/internal/modules/inventory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Attribute registry ──────────────────────────────────
	attributeRepo := attribute.NewPostgresRepository(db)
	assignmentRepo := attribute.NewAssignmentPostgresRepository(db)
	attributeService := attribute.NewService(attributeRepo, assignmentRepo, attribute.RequireDeferred)
	attribute.NewHandler(attributeService).RegisterRoutes(router)

	// ── Catalog items & variations ──────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo, attributeService)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Inventory ledger ────────────────────────────────────
	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("Mercato API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
