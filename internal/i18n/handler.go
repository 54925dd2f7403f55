package i18n

import (
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/response"
	"backoffice/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the string tables and the language preference.
type Handler struct {
	Catalog    *Catalog
	Preference *Preference
	Log        logger.Logger
}

func NewHandler(c *Catalog, p *Preference, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{Catalog: c, Preference: p, Log: log.WithComponent("i18n-http")}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/i18n")
	g.Get("/", h.Current)
	g.Put("/current", h.SetCurrent)
	g.Get("/:lang", h.Get)
}

// Get returns the table for :lang; unknown languages get the French table.
func (h *Handler) Get(c *fiber.Ctx) error {
	return c.JSON(h.Catalog.Table(c.Params("lang")))
}

// Current returns the table of the persisted language.
func (h *Handler) Current(c *fiber.Ctx) error {
	lang, err := h.Preference.Current(c.UserContext())
	if err != nil {
		h.Log.WithContext(c.UserContext()).Warnf("Using default language: %v", err)
	}
	return c.JSON(h.Catalog.Table(lang))
}

type setLanguageRequest struct {
	Lang string `json:"lang"`
}

// SetCurrent persists the requested language and returns its table.
func (h *Handler) SetCurrent(c *fiber.Ctx) error {
	var req setLanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	lang, err := h.Preference.Set(c.UserContext(), req.Lang)
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(h.Catalog.Table(lang))
}

// Middleware puts the persisted language into the request context.
func (h *Handler) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang, _ := h.Preference.Current(c.UserContext())
		c.SetUserContext(utils.WithLanguage(c.UserContext(), lang))
		return c.Next()
	}
}
