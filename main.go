package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abrams/magicbinder/magicbinder"
	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/database"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/abrams/magicbinder/magicbinder/logger"
	"github.com/abrams/magicbinder/magicbinder/search"
	"github.com/abrams/magicbinder/magicbinder/server"
	"github.com/abrams/magicbinder/magicbinder/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	importPath := flag.String("import-cards", "", "bulk card JSON file to import before serving")
	flag.Parse()

	cfg, err := magicbinder.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))
	slog.Info("Starting MagicBinder",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Schema initialization failed", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	bunDB := db.BunDB()
	cardRepo := repositories.NewCardRepository(bunDB)
	userRepo := repositories.NewUserRepository(bunDB)
	binderRepo := repositories.NewBinderRepository(bunDB)
	deckRepo := repositories.NewDeckRepository(bunDB)
	deckCardRepo := repositories.NewDeckCardRepository(bunDB)

	owned, err := inventory.NewOwnershipCache(config.OwnershipCacheSize)
	if err != nil {
		slog.Error("Failed to create ownership cache", slog.Any("error", err))
		os.Exit(-1)
	}

	var spaces *services.SpacesService
	if cfg.Spaces.Enabled {
		spaces, err = services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.CardRoot,
		)
		if err != nil {
			slog.Error("Failed to initialize spaces client", slog.Any("error", err))
			os.Exit(-1)
		}
		if err := spaces.VerifyConnection(ctx); err != nil {
			slog.Warn("Spaces bucket unreachable, continuing without image URLs",
				slog.Any("error", err))
			spaces = nil
		}
	}

	if *importPath != "" {
		importer := services.NewImportService(cardRepo, spaces)
		importStart := time.Now()
		count, err := importer.ImportFile(ctx, *importPath)
		if err != nil {
			slog.Error("Card import failed", slog.Any("error", err))
			os.Exit(-1)
		}
		slog.Info("Card import finished",
			slog.String("type", "import"),
			slog.Int("cards", count),
			slog.Duration("took", time.Since(importStart)))
	}

	coord := inventory.NewCoordinator(bunDB, binderRepo, deckRepo, deckCardRepo, owned)

	sessions, err := search.NewManager(config.SearchSessionCacheSize)
	if err != nil {
		slog.Error("Failed to create session manager", slog.Any("error", err))
		os.Exit(-1)
	}

	binderSvc := services.NewBinderService(bunDB, binderRepo, cardRepo, owned)
	deckSvc := services.NewDeckService(deckRepo, deckCardRepo, coord)
	searchSvc := services.NewSearchService(cardRepo, binderRepo, owned, sessions)

	srv := server.New(server.Deps{
		DB:       db,
		Users:    userRepo,
		Cards:    cardRepo,
		Binder:   binderSvc,
		Decks:    deckSvc,
		Searches: searchSvc,
		Coord:    coord,
	}, cfg.Server.AllowOrigins)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Server.Addr())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("Server stopped", slog.Any("error", err))
			os.Exit(-1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", slog.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", slog.Any("error", err))
		}
	}
}
