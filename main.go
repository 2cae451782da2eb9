package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"cinelog/config"
	"cinelog/handlers"
	"cinelog/internal/database"
	"cinelog/services/agenda"
	"cinelog/services/catalog"
	"cinelog/services/store"
	"cinelog/utils"
)

func setupLogging(settings config.LoggingSettings) {
	if settings.File == "" {
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   settings.File,
		MaxSize:    settings.MaxSizeMB,
		MaxBackups: settings.MaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotated))
}

func main() {
	configPath := os.Getenv("CINELOG_CONFIG")
	if configPath == "" {
		configPath = "data/config.json"
	}

	settings, err := config.NewManager(configPath).Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	setupLogging(settings.Logging)

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	listStore := store.New(db.Repository)

	catalogOpts := []catalog.Option{}
	if settings.Catalog.BaseURL != "" {
		catalogOpts = append(catalogOpts, catalog.WithBaseURL(settings.Catalog.BaseURL))
	}
	if settings.Catalog.Language != "" {
		catalogOpts = append(catalogOpts, catalog.WithLanguage(settings.Catalog.Language))
	}
	if settings.Catalog.Region != "" {
		catalogOpts = append(catalogOpts, catalog.WithRegion(settings.Catalog.Region))
	}
	catalogClient, err := catalog.New(settings.Catalog.APIKey, catalogOpts...)
	if err != nil {
		log.Fatalf("[main] failed to build catalog client: %v", err)
	}

	resolver := agenda.NewService(catalogClient,
		agenda.WithMaxConcurrent(settings.Agenda.MaxConcurrentLookups),
		agenda.WithLookupTimeout(time.Duration(settings.Agenda.LookupTimeoutSeconds)*time.Second),
	)

	router := utils.NewRouter()
	api := utils.APIRouter(router)
	handlers.NewAuthHandler(listStore).Register(api)
	handlers.NewListsHandler(listStore).Register(api)
	handlers.NewBrowseHandler(catalogClient).Register(api)
	handlers.NewMediaHandler(catalogClient).Register(api)
	handlers.NewAgendaHandler(listStore, resolver).Register(api)

	server := &http.Server{
		Addr:              settings.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[main] cinelog listening on %s", settings.Server.ListenAddr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("[main] server stopped: %v", err)
	}
}
