package http

import (
	"encoding/json"
	"fmt"
	"strconv"

	"backoffice/internal/catalog/domain/model"
	"backoffice/internal/catalog/usecase"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/response"
	"backoffice/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

const screenLocal = "screen"

// Handler serves every entity screen under /:entity.
type Handler struct {
	screens map[string]usecase.Screen
	log     logger.Logger
}

// NewHandler indexes screens by entity name.
func NewHandler(screens []usecase.Screen, log logger.Logger) *Handler {
	byName := make(map[string]usecase.Screen, len(screens))
	for _, s := range screens {
		byName[s.Name()] = s
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{screens: byName, log: log.WithComponent("catalog-http")}
}

// RegisterRoutes mounts the entity routes on router. Literal segments are
// registered before :id so "form" and "page" never read as ids.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/:entity", h.resolve)

	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Post("/reload", h.Reload)
	g.Post("/page/next", h.NextPage)
	g.Post("/page/prev", h.PrevPage)

	g.Get("/form", h.Form)
	g.Post("/form", h.OpenCreate)
	g.Delete("/form", h.CancelForm)
	g.Post("/form/submit", h.Submit)

	g.Get("/:id", h.Get)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/form", h.OpenEdit)
}

// resolve looks up the screen named by :entity.
func (h *Handler) resolve(c *fiber.Ctx) error {
	name := c.Params("entity")
	s, ok := h.screens[name]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(response.Body{
			Error:   "unknown_entity",
			Message: fmt.Sprintf("unknown entity %q", name),
			Code:    "NOT_FOUND",
		})
	}
	c.Locals(screenLocal, s)
	c.SetUserContext(utils.WithEntity(c.UserContext(), s.Name()))
	return c.Next()
}

// idParam copies :id out of the request buffer, which fasthttp reuses once
// the handler returns.
func idParam(c *fiber.Ctx) model.ID {
	return model.ID(fiberutils.CopyString(c.Params("id")))
}

func screenOf(c *fiber.Ctx) usecase.Screen {
	return c.Locals(screenLocal).(usecase.Screen)
}

func (h *Handler) List(c *fiber.Ctx) error {
	page := 0
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "invalid_page", "page must be an integer")
		}
		page = max(n, 1)
	}
	return c.JSON(screenOf(c).List(page))
}

func (h *Handler) NextPage(c *fiber.Ctx) error {
	return c.JSON(screenOf(c).NextPage())
}

func (h *Handler) PrevPage(c *fiber.Ctx) error {
	return c.JSON(screenOf(c).PrevPage())
}

func (h *Handler) Reload(c *fiber.Ctx) error {
	s := screenOf(c)
	if err := s.Reload(c.UserContext()); err != nil {
		// Seed failures leave an empty table rather than an error page.
		h.log.WithContext(c.UserContext()).Warnf("Reload failed: %v", err)
	}
	return c.JSON(s.List(0))
}

func (h *Handler) Get(c *fiber.Ctx) error {
	rec, ok := screenOf(c).Get(idParam(c))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(response.Body{
			Error:   "record_not_found",
			Message: "record not found",
			Code:    "NOT_FOUND",
		})
	}
	return c.JSON(rec)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	input, err := parseInput(c)
	if err != nil {
		return response.BadRequest(c, "invalid_request_body", err.Error())
	}

	rec, err := screenOf(c).Create(c.UserContext(), input)
	if err != nil {
		return h.fail(c, "create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	input, err := parseInput(c)
	if err != nil {
		return response.BadRequest(c, "invalid_request_body", err.Error())
	}

	rec, found, err := screenOf(c).Update(c.UserContext(), idParam(c), input)
	if err != nil {
		return h.fail(c, "update", err)
	}
	if !found {
		return c.JSON(fiber.Map{"found": false})
	}
	return c.JSON(fiber.Map{"found": true, "record": rec})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if !c.QueryBool("confirm") {
		return response.BadRequest(c, "confirmation_required", "deletion must be confirmed with confirm=true")
	}

	found, err := screenOf(c).Delete(c.UserContext(), idParam(c))
	if err != nil {
		return h.fail(c, "delete", err)
	}
	return c.JSON(fiber.Map{"found": found})
}

func (h *Handler) Form(c *fiber.Ctx) error {
	return c.JSON(screenOf(c).Form())
}

func (h *Handler) OpenCreate(c *fiber.Ctx) error {
	return c.JSON(screenOf(c).OpenCreate())
}

func (h *Handler) OpenEdit(c *fiber.Ctx) error {
	st, err := screenOf(c).OpenEdit(idParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) CancelForm(c *fiber.Ctx) error {
	return c.JSON(screenOf(c).Cancel())
}

func (h *Handler) Submit(c *fiber.Ctx) error {
	input, err := parseInput(c)
	if err != nil {
		return response.BadRequest(c, "invalid_request_body", err.Error())
	}

	res, err := screenOf(c).Submit(c.UserContext(), input)
	if err != nil {
		return h.fail(c, "submit", err)
	}
	if res.Created {
		return c.Status(fiber.StatusCreated).JSON(res)
	}
	return c.JSON(res)
}

func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	h.log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	}).Warn("Entity operation failed")
	return response.Error(c, err)
}

// parseInput reads a flat JSON object; numbers and booleans are kept as
// their literal text so validation sees what the user typed.
func parseInput(c *fiber.Ctx) (model.Input, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}

	input := make(model.Input, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			input[k] = s
			continue
		}
		if string(v) == "null" {
			input[k] = ""
			continue
		}
		input[k] = string(v)
	}
	return input, nil
}
