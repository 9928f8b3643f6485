package customers

import (
	"errors"

	"customer-sync/core/customer"
	"customer-sync/core/directory"
	"customer-sync/core/lock"
	"customer-sync/core/logger"
	"customer-sync/core/reconcile"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for customers.
type Handler struct {
	service  *Service
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		logger:   service.logger,
		validate: validator.New(),
	}
}

// ReconcileRequest is the body of POST /customers/reconcile. Omitting
// customers reconciles the company database.
type ReconcileRequest struct {
	Customers []customer.Customer `json:"customers" validate:"omitempty,dive"`
	Apply     bool                `json:"apply"`
	DryRun    bool                `json:"dry_run"`
}

// AddRequest is the body of POST /customers.
type AddRequest struct {
	Customers []customer.Customer `json:"customers" validate:"required,min=1,dive"`
}

// RegisterRoutes registers the customer routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/customers")
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/snapshot", h.HandleSnapshot)
	group.Get("/reports", h.HandleReports)
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleAdd)
	group.Delete("/", h.HandleDeleteAll)
}

// HandleReconcile runs a reconciliation pass.
// @Summary Reconcile Customers
// @Description Classify customers against the previous applied pass and optionally apply directory changes. Without apply the pass is a preview and the baseline does not move.
// @Tags customers
// @Accept json
// @Produce json
// @Param request body ReconcileRequest true "Candidates and options"
// @Success 200 {object} RunResult "Reconciliation result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Run in progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /customers/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}

	opts := reconcile.ReconcileOptions{
		DoAdd:     req.Apply,
		DoDelete:  req.Apply,
		Confirmed: req.Apply,
		DryRun:    req.DryRun,
	}
	result, err := h.service.Reconcile(c.UserContext(), req.Customers, opts)
	if result != nil {
		// Partial apply failures are reported in the body
		return c.JSON(result)
	}
	return h.fail(c, statusOf(err), err)
}

// HandleList returns every customer in the directory.
// @Summary List Customers
// @Description Query every customer in the external directory.
// @Tags customers
// @Produce json
// @Success 200 {array} customer.Customer "Customers"
// @Failure 502 {object} map[string]string "Directory unavailable"
// @Router /customers [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	all, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, statusOf(err), err)
	}
	return c.JSON(all)
}

// HandleAdd adds customers to the directory.
// @Summary Add Customers
// @Description Add customers to the external directory, stopping at the first failure.
// @Tags customers
// @Accept json
// @Produce json
// @Param request body AddRequest true "Customers to add"
// @Success 201 {array} customer.Customer "Added customers"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Directory unavailable"
// @Router /customers [post]
func (h *Handler) HandleAdd(c *fiber.Ctx) error {
	var req AddRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}

	added, err := h.service.AddAll(c.UserContext(), req.Customers)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{
			"error": err.Error(),
			"added": added,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// HandleDeleteAll removes every customer from the directory.
// @Summary Delete All Customers
// @Description Delete every customer in the external directory. Failures are skipped.
// @Tags customers
// @Produce json
// @Success 200 {object} map[string]interface{} "Deleted count"
// @Failure 502 {object} map[string]string "Directory unavailable"
// @Router /customers [delete]
func (h *Handler) HandleDeleteAll(c *fiber.Ctx) error {
	deleted, err := h.service.DeleteAll(c.UserContext())
	if err != nil && deleted == 0 {
		return h.fail(c, statusOf(err), err)
	}
	body := fiber.Map{"deleted": deleted}
	if err != nil {
		body["errors"] = splitErrors(err)
	}
	return c.JSON(body)
}

// HandleSnapshot returns the records of the last pass.
// @Summary Engine Snapshot
// @Description Records tracked by the engine after the last pass.
// @Tags customers
// @Produce json
// @Success 200 {array} customer.Customer "Snapshot"
// @Router /customers/snapshot [get]
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	return c.JSON(h.service.Snapshot())
}

// HandleReports lists archived reports.
// @Summary List Reports
// @Description Names of archived reconciliation reports, oldest first.
// @Tags customers
// @Produce json
// @Success 200 {array} string "Report names"
// @Failure 404 {object} map[string]string "No archive"
// @Router /customers/reports [get]
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	names, err := h.service.Reports(c.UserContext())
	if err != nil {
		return h.fail(c, statusOf(err), err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

func (h *Handler) fail(c *fiber.Ctx, status int, err error) error {
	l := logger.WithRayID(h.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error("Customer request failed", zap.Error(err))
	} else {
		l.Warn("Customer request rejected", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusOf(err error) int {
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &invalid),
		errors.Is(err, reconcile.ErrDuplicateKey),
		errors.Is(err, reconcile.ErrMissingKey):
		return fiber.StatusBadRequest
	case errors.Is(err, lock.ErrNotObtained):
		return fiber.StatusConflict
	case errors.Is(err, ErrNoArchive), errors.Is(err, ErrNoReport):
		return fiber.StatusNotFound
	case errors.Is(err, directory.ErrRemoteRejected),
		errors.Is(err, directory.ErrNoResponse),
		errors.Is(err, directory.ErrConnection):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
