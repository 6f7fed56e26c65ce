package server

import (
	"strconv"
	"strings"

	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/abrams/magicbinder/magicbinder/search"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondDomainError maps inventory and repository error kinds to HTTP statuses.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case inventory.IsInvalidInput(err):
		return SendError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	case inventory.IsNotFound(err):
		return SendError(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case inventory.IsNotOwned(err):
		return SendError(c, fiber.StatusConflict, "NOT_OWNED", err.Error())
	case inventory.IsInsufficientQuantity(err):
		return SendError(c, fiber.StatusConflict, "INSUFFICIENT_QUANTITY", err.Error())
	case inventory.IsCollaboratorUnavailable(err):
		return SendError(c, fiber.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	default:
		return SendError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func parseInt64Param(c *fiber.Ctx, name string) (int64, error) {
	value, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return value, nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	value, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return value, nil
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}

func queryUserID(c *fiber.Ctx) int64 {
	value, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// --- health ---

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.db.Ping(c.Context()); err != nil {
		return SendError(c, fiber.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
	}
	return SendSuccess(c, fiber.Map{"status": "ok"}, "")
}

// --- cards ---

func (s *Server) handleCardSearch(c *fiber.Ctx) error {
	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "pageSize", config.DefaultPageSize)

	result, err := s.searches.SearchCatalog(c.Context(), queryUserID(c), c.Query("q"), page, pageSize)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toSearchPageJSON(result), "")
}

func (s *Server) handleCardSuggest(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 10)
	names, err := s.searches.SuggestNames(c.Context(), c.Query("q"), limit)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, names, "")
}

func (s *Server) handleSyntaxHelp(c *fiber.Ctx) error {
	return SendSuccess(c, search.SyntaxHelp(), "")
}

func (s *Server) handleGetCard(c *fiber.Ctx) error {
	cardID, err := parseUUIDParam(c, "cardId")
	if err != nil {
		return err
	}
	card, err := s.cards.GetByID(c.Context(), cardID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toCardJSON(card), "")
}

// --- users ---

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	users, err := s.users.List(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, userJSON{ID: u.ID, Username: u.Username})
	}
	return SendSuccess(c, out, "")
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return SendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "username is required")
	}
	user, err := s.users.GetOrCreate(c.Context(), username)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendCreated(c, userJSON{ID: user.ID, Username: user.Username}, "user ready")
}

// --- binder ---

func (s *Server) handleBinderSearch(c *fiber.Ctx) error {
	userID, err := parseInt64Param(c, "userId")
	if err != nil {
		return err
	}
	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "pageSize", config.DefaultPageSize)

	result, err := s.searches.SearchBinder(c.Context(), userID, c.Query("q"), page, pageSize)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toSearchPageJSON(result), "")
}

type binderMutationRequest struct {
	CardID   string `json:"cardId"`
	Quantity int    `json:"quantity"`
}

func (r *binderMutationRequest) parse(c *fiber.Ctx) (uuid.UUID, error) {
	if err := c.BodyParser(r); err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cardID, err := uuid.Parse(r.CardID)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid cardId")
	}
	return cardID, nil
}

func (s *Server) handleBinderAdd(c *fiber.Ctx) error {
	userID, err := parseInt64Param(c, "userId")
	if err != nil {
		return err
	}
	var req binderMutationRequest
	cardID, err := req.parse(c)
	if err != nil {
		return err
	}
	if err := s.binder.Acquire(c.Context(), userID, cardID, req.Quantity); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "copies added")
}

func (s *Server) handleBinderRemove(c *fiber.Ctx) error {
	userID, err := parseInt64Param(c, "userId")
	if err != nil {
		return err
	}
	var req binderMutationRequest
	cardID, err := req.parse(c)
	if err != nil {
		return err
	}
	if err := s.binder.Release(c.Context(), userID, cardID, req.Quantity); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "copies removed")
}

func (s *Server) handleBinderQuantity(c *fiber.Ctx) error {
	userID, err := parseInt64Param(c, "userId")
	if err != nil {
		return err
	}
	cardID, err := parseUUIDParam(c, "cardId")
	if err != nil {
		return err
	}
	quantity, err := s.binder.OwnedQuantity(c.Context(), userID, cardID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, fiber.Map{"cardId": cardID.String(), "quantity": quantity}, "")
}

// --- decks ---

type deckRequest struct {
	UserID      int64  `json:"userId"`
	Name        string `json:"name"`
	Format      string `json:"format"`
	Notes       string `json:"notes"`
	MaxCapacity int    `json:"maxCapacity"`
}

func (s *Server) handleListDecks(c *fiber.Ctx) error {
	userID, err := parseInt64Param(c, "userId")
	if err != nil {
		return err
	}
	decks, err := s.decks.ListDecks(c.Context(), userID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]deckJSON, 0, len(decks))
	for _, deck := range decks {
		out = append(out, toDeckJSON(deck))
	}
	return SendSuccess(c, out, "")
}

func (s *Server) handleCreateDeck(c *fiber.Ctx) error {
	var req deckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	deck, err := s.decks.CreateDeck(c.Context(), req.UserID, req.Name, req.Format, req.Notes, req.MaxCapacity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendCreated(c, toDeckJSON(deck), "deck created")
}

func (s *Server) handleGetDeck(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	view, err := s.decks.GetDeck(c.Context(), queryUserID(c), deckID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toDeckViewJSON(view), "")
}

func (s *Server) handleUpdateDeck(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	var req deckRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	deck, err := s.decks.UpdateDeck(c.Context(), req.UserID, deckID, req.Name, req.Format, req.Notes, req.MaxCapacity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toDeckJSON(deck), "deck updated")
}

func (s *Server) handleDeleteDeck(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	if err := s.decks.DeleteDeck(c.Context(), queryUserID(c), deckID); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "deck deleted")
}

func (s *Server) handleExportDeck(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	list, err := s.decks.Export(c.Context(), queryUserID(c), deckID)
	if err != nil {
		return respondDomainError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(list)
}

type deckCardRequest struct {
	UserID    int64  `json:"userId"`
	CardID    string `json:"cardId"`
	Quantity  int    `json:"quantity"`
	Sideboard bool   `json:"isSideboard"`
}

func (r *deckCardRequest) parse(c *fiber.Ctx) (uuid.UUID, error) {
	if err := c.BodyParser(r); err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cardID, err := uuid.Parse(r.CardID)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid cardId")
	}
	return cardID, nil
}

func (s *Server) handleDeckAddCard(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	var req deckCardRequest
	cardID, err := req.parse(c)
	if err != nil {
		return err
	}
	if err := s.coord.AddToDeck(c.Context(), req.UserID, deckID, cardID, req.Quantity, req.Sideboard); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "card added to deck")
}

func (s *Server) handleDeckRemoveCard(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	var req deckCardRequest
	cardID, err := req.parse(c)
	if err != nil {
		return err
	}
	if err := s.coord.RemoveFromDeck(c.Context(), req.UserID, deckID, cardID, req.Quantity, req.Sideboard); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "card returned to binder")
}

func (s *Server) handleDeckSideboard(c *fiber.Ctx) error {
	deckID, err := parseInt64Param(c, "deckId")
	if err != nil {
		return err
	}
	var req struct {
		UserID      int64  `json:"userId"`
		CardID      string `json:"cardId"`
		ToSideboard bool   `json:"toSideboard"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cardId")
	}
	// Omitted quantity moves the whole allocation.
	if req.Quantity > 0 {
		err = s.coord.MoveZone(c.Context(), req.UserID, deckID, cardID, !req.ToSideboard, req.Quantity)
	} else {
		err = s.coord.MoveSideboard(c.Context(), req.UserID, deckID, cardID, req.ToSideboard)
	}
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "card moved")
}

func (s *Server) handleDeckTransfer(c *fiber.Ctx) error {
	var req struct {
		UserID       int64  `json:"userId"`
		SourceDeckID int64  `json:"sourceDeckId"`
		DestDeckID   int64  `json:"destDeckId"`
		CardID       string `json:"cardId"`
		Quantity     int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cardId")
	}
	if err := s.coord.TransferBetweenDecks(c.Context(), req.UserID, req.SourceDeckID, req.DestDeckID, cardID, req.Quantity); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, nil, "card transferred")
}

// --- search sessions ---

func (s *Server) handleOpenSession(c *fiber.Ctx) error {
	var req struct {
		UserID   int64  `json:"userId"`
		Scope    string `json:"scope"`
		PageSize int    `json:"pageSize"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	id, err := s.searches.OpenSession(req.UserID, req.Scope, req.PageSize)
	if err != nil {
		return respondDomainError(c, err)
	}
	return SendCreated(c, fiber.Map{"sessionId": id}, "session opened")
}

func (s *Server) session(c *fiber.Ctx) (*search.Session, error) {
	sess, ok := s.searches.Session(c.Params("sessionId"))
	if !ok {
		return nil, SendError(c, fiber.StatusNotFound, "NOT_FOUND", "session not found or expired")
	}
	return sess, nil
}

func (s *Server) handleSessionState(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if sess == nil {
		return err
	}
	return SendSuccess(c, toSessionStateJSON(c.Params("sessionId"), sess.Snapshot()), "")
}

func (s *Server) handleSessionQuery(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if sess == nil {
		return err
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	sess.SetQuery(req.Query)
	if err := sess.Submit(c.Context()); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toSessionStateJSON(c.Params("sessionId"), sess.Snapshot()), "")
}

func (s *Server) handleSessionPage(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if sess == nil {
		return err
	}
	page, err := strconv.Atoi(c.Params("page"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid page")
	}
	if err := sess.ChangePage(c.Context(), page); err != nil {
		return respondDomainError(c, err)
	}
	return SendSuccess(c, toSessionStateJSON(c.Params("sessionId"), sess.Snapshot()), "")
}

func (s *Server) handleCloseSession(c *fiber.Ctx) error {
	s.searches.CloseSession(c.Params("sessionId"))
	return SendSuccess(c, nil, "session closed")
}
