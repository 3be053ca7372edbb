package httpapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/present"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// Searcher runs one location search.
type Searcher interface {
	Search(ctx context.Context, rawInput string) (weather.SearchResult, error)
}

// Dependencies are the collaborators the HTTP handlers need.
type Dependencies struct {
	Searcher Searcher
	Sessions *store.MemoryStore
	Views    *present.Builder
	Logger   *slog.Logger
}

type handlers struct {
	Dependencies
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Views == nil {
		deps.Views = present.NewBuilder(nil)
	}
	h := &handlers{Dependencies: deps}

	v1 := app.Group("/api/v1")
	v1.Get("/search", h.search)
	v1.Post("/sessions", h.createSession)
	v1.Get("/sessions/:id", h.getSession)
	v1.Post("/sessions/:id/search", h.searchSession)
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// searchQuery holds query parameters for the search endpoint.
type searchQuery struct {
	Q string `query:"q" validate:"max=200"`
}

// searchRequest is the body of a session search.
type searchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type searchResponse struct {
	weather.SearchResult
	View present.View `json:"view"`
}

func (h *handlers) search(c *fiber.Ctx) error {
	var q searchQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := h.Searcher.Search(c.UserContext(), q.Q)
	if err != nil {
		return searchError(err)
	}

	return c.JSON(searchResponse{
		SearchResult: res,
		View:         h.Views.Build(res),
	})
}

func (h *handlers) createSession(c *fiber.Ctx) error {
	sess, err := h.Sessions.Create()
	if err != nil {
		if errors.Is(err, store.ErrFull) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "too many active sessions")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (h *handlers) getSession(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c.Params("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(sess)
}

// searchSession runs a search on behalf of a session. Only the most recent
// search on a session may update it; an older one that finishes late gets 409.
func (h *handlers) searchSession(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	id := c.Params("id")
	ticket, err := h.Sessions.Begin(id, req.Query)
	if err != nil {
		return sessionError(err)
	}

	var sess store.Session
	res, err := h.Searcher.Search(c.UserContext(), req.Query)
	if err != nil {
		h.Logger.Info("session search failed", "session_id", id, "query", req.Query, "error", err)
		sess, err = h.Sessions.Fail(ticket, weather.UserMessage(err))
	} else {
		sess, err = h.Sessions.Complete(ticket, h.Views.Build(res))
	}
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(sess)
}

func searchError(err error) error {
	msg := weather.UserMessage(err)
	switch {
	case errors.Is(err, weather.ErrEmptyQuery):
		return fiber.NewError(fiber.StatusBadRequest, msg)
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msg)
	case errors.Is(err, weather.ErrMalformedResponse):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	default:
		return fiber.NewError(fiber.StatusServiceUnavailable, msg)
	}
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, store.ErrStaleTicket):
		return fiber.NewError(fiber.StatusConflict, "search superseded by a newer one")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "session update failed")
	}
}
