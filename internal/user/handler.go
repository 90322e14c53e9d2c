package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgUserCreated   = "user created"
	msgPhoneExists   = "Phone number already exists"
	msgUserNotFound  = "User not found"
	msgInternalError = "Internal server error"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/users", h.getUsers)
	router.Get("/users/:id", h.getUser)
	router.Post("/users", h.createUser)
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		h.log.Error("list users failed", zap.Error(err), requestID(c))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternalError})
	}
	return c.JSON(users)
}

// getUser answers 404 for ids that do not parse as integers or fall outside
// the int4 range of the id column, the same as for ids that match no row.
func (h *Handler) getUser(c *fiber.Ctx) error {
	parsed, err := strconv.ParseInt(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgUserNotFound})
	}
	id := int(parsed)

	u, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgUserNotFound})
		}
		h.log.Error("get user failed", zap.Int("user_id", id), zap.Error(err), requestID(c))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternalError})
	}
	return c.JSON(u)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	payload := new(CreateUserInput)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), *payload)
	if err != nil {
		if errors.Is(err, ErrPhoneExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgPhoneExists})
		}
		// the underlying message is returned as-is so callers can see which
		// reference failed to connect
		h.log.Error("create user failed", zap.Error(err), requestID(c))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": msgUserCreated, "user": created})
}

func requestID(c *fiber.Ctx) zap.Field {
	if id, ok := c.Locals("requestid").(string); ok {
		return zap.String("request_id", id)
	}
	return zap.Skip()
}
