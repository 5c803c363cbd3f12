package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/UkralStul/forum-post-service/internal/clients"
	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/events"
	"github.com/UkralStul/forum-post-service/internal/httpapi"
	"github.com/UkralStul/forum-post-service/internal/replycount"
	"github.com/UkralStul/forum-post-service/internal/service"
	"github.com/UkralStul/forum-post-service/internal/storage"
	"github.com/UkralStul/forum-post-service/internal/storage/inmemory"
	"github.com/UkralStul/forum-post-service/internal/storage/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultFileServiceURL = "http://127.0.0.1:5009/files/upload"
	defaultReplyCountURL  = "http://127.0.0.1:5009/replies/reply-count"
	collaboratorTimeout   = 10 * time.Second
)

func main() {
	// .env опционален: в контейнере конфигурация приходит из окружения.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	storageType := flag.String("storage", "in-memory", "Storage type (in-memory or postgres)")
	flag.Parse()

	var store storage.Storage
	var err error

	log.Printf("Starting server with %s storage", *storageType)
	if *storageType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL must be set for postgres storage")
		}
		store, err = postgres.New(dsn)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
	} else {
		memStore := inmemory.New()
		fillWithMockData(memStore)
		store = memStore
	}

	fileClient := clients.NewFileClient(envOr("FILE_SERVICE_URL", defaultFileServiceURL), collaboratorTimeout)
	replyClient := clients.NewReplyClient(envOr("REPLY_SERVICE_URL", defaultReplyCountURL), collaboratorTimeout)

	observer := events.NewObserver()
	svc := service.New(store, fileClient, replycount.New(replyClient), observer)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Mount("/", httpapi.NewHandler(svc, observer).Routes())

	log.Printf("post service listening on :%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fillWithMockData(store storage.Storage) {
	ctx := context.Background()

	published, err := store.CreatePost(ctx, &domain.Post{
		UserID:  1,
		Title:   "Welcome to the forum",
		Content: "This post is visible to everyone.",
		Status:  domain.StatusPublished,
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create published post: %v", err)
	}

	draft, err := store.CreatePost(ctx, &domain.Post{
		UserID:  1,
		Title:   "My draft",
		Content: "Only the owner sees this until it is published.",
		Status:  domain.StatusUnpublished,
	})
	if err != nil {
		log.Fatalf("fillWithMockData: failed to create draft: %v", err)
	}

	log.Printf("Mock data filled successfully. Published post ID: %d, draft ID: %d", published.ID, draft.ID)
}
