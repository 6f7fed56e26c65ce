package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/abrams/magicbinder/magicbinder/database"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/abrams/magicbinder/magicbinder/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	DB       *database.DB
	Users    repositories.UserRepository
	Cards    repositories.CardRepository
	Binder   *services.BinderService
	Decks    *services.DeckService
	Searches *services.SearchService
	Coord    *inventory.Coordinator
}

type Server struct {
	app      *fiber.App
	db       *database.DB
	users    repositories.UserRepository
	cards    repositories.CardRepository
	binder   *services.BinderService
	decks    *services.DeckService
	searches *services.SearchService
	coord    *inventory.Coordinator
}

func New(deps Deps, allowOrigins string) *Server {
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      "MagicBinder API",
		ErrorHandler: ErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(LoggingMiddleware())

	s := &Server{
		app:      app,
		db:       deps.DB,
		users:    deps.Users,
		cards:    deps.Cards,
		binder:   deps.Binder,
		decks:    deps.Decks,
		searches: deps.Searches,
		coord:    deps.Coord,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")
	api.Get("/syntax", s.handleSyntaxHelp)

	cards := api.Group("/cards")
	cards.Get("/search", s.handleCardSearch)
	cards.Get("/suggest", s.handleCardSuggest)
	cards.Get("/:cardId", s.handleGetCard)

	users := api.Group("/users")
	users.Get("/", s.handleListUsers)
	users.Post("/", s.handleCreateUser)

	binder := api.Group("/binder/:userId")
	binder.Get("/", s.handleBinderSearch)
	binder.Post("/add", s.handleBinderAdd)
	binder.Post("/remove", s.handleBinderRemove)
	binder.Get("/card/:cardId", s.handleBinderQuantity)

	decks := api.Group("/decks")
	decks.Get("/user/:userId", s.handleListDecks)
	decks.Post("/", s.handleCreateDeck)
	decks.Post("/transfer", s.handleDeckTransfer)
	decks.Get("/:deckId", s.handleGetDeck)
	decks.Put("/:deckId", s.handleUpdateDeck)
	decks.Delete("/:deckId", s.handleDeleteDeck)
	decks.Get("/:deckId/export", s.handleExportDeck)
	decks.Post("/:deckId/cards/add", s.handleDeckAddCard)
	decks.Post("/:deckId/cards/remove", s.handleDeckRemoveCard)
	decks.Post("/:deckId/cards/sideboard", s.handleDeckSideboard)

	sessions := api.Group("/search/sessions")
	sessions.Post("/", s.handleOpenSession)
	sessions.Get("/:sessionId", s.handleSessionState)
	sessions.Post("/:sessionId/query", s.handleSessionQuery)
	sessions.Post("/:sessionId/page/:page", s.handleSessionPage)
	sessions.Delete("/:sessionId", s.handleCloseSession)
}

// Listen starts serving on addr and blocks until the listener stops.
func (s *Server) Listen(addr string) error {
	slog.Info("Starting HTTP server",
		slog.String("type", "sys"),
		slog.String("addr", addr),
	)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
