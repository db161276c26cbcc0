package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/pkg/validate"
)

type Handler struct {
	lendingSvc LendingService
	log        *zap.Logger
}

func New(lendingSvc LendingService, log *zap.Logger) *Handler {
	return &Handler{
		lendingSvc: lendingSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/members", h.CreateMember)
	api.GET("/members/:memberUid", h.GetMember)
	api.GET("/members/:memberUid/borrowings", h.MemberBorrowings)
	api.GET("/members/:memberUid/reservations", h.MemberReservations)
	api.GET("/members/:memberUid/fines", h.MemberFines)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:bookUid", h.GetBook)

	api.POST("/borrowings", h.BorrowBook)
	api.POST("/borrowings/:borrowingUid/return", h.ReturnBook)
	api.POST("/borrowings/:borrowingUid/lost", h.ReportLost)

	api.POST("/reservations", h.ReserveBook)
	api.DELETE("/reservations/:reservationUid", h.CancelReservation)

	api.POST("/fines", h.IssueFine)
	api.POST("/fines/:fineUid/pay", h.PayFine)
	api.POST("/fines/:fineUid/waive", h.WaiveFine)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the domain error taxonomy onto status codes: validation
// 400, missing rows 404, conflicts and lifecycle misuse 409, integrity
// violations and everything unexpected 500.
func (h *Handler) httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrMemberNotEligible),
		errors.Is(err, errs.ErrInvalidDate),
		errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrInvalidFineReason),
		errors.Is(err, errs.ErrFineAmountMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNoCopiesAvailable),
		errors.Is(err, errs.ErrDuplicateActiveReservation),
		errors.Is(err, errs.ErrBorrowingClosed),
		errors.Is(err, errs.ErrReservationClosed),
		errors.Is(err, errs.ErrInvalidFineState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if errs.IsIntegrity(err) {
		h.log.Error("integrity violation", zap.Error(err))
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) CreateMember(c echo.Context) error {
	var req model.CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.lendingSvc.CreateMember(c.Request().Context(), req, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMember(c echo.Context) error {
	m, err := h.lendingSvc.GetMember(c.Request().Context(), c.Param("memberUid"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) MemberBorrowings(c echo.Context) error {
	items, err := h.lendingSvc.MemberBorrowings(c.Request().Context(), c.Param("memberUid"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MemberReservations(c echo.Context) error {
	items, err := h.lendingSvc.MemberReservations(c.Request().Context(), c.Param("memberUid"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MemberFines(c echo.Context) error {
	items, err := h.lendingSvc.MemberFines(c.Request().Context(), c.Param("memberUid"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListBooks(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page")) //nolint:errcheck
	size, _ := strconv.Atoi(c.QueryParam("size")) //nolint:errcheck
	if page < 1 || size < 1 {
		// anything short of a usable page spec means no pagination
		page, size = 0, 0
	}
	items, err := h.lendingSvc.ListBooks(c.Request().Context(), page, size)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.lendingSvc.GetBook(c.Request().Context(), c.Param("bookUid"))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) BorrowBook(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.lendingSvc.BorrowBook(c.Request().Context(), req, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ReturnBook(c echo.Context) error {
	borrowingUid := c.Param("borrowingUid")
	if borrowingUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "borrowingUid is empty")
	}
	var req model.ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	now := time.Now().UTC()
	returnDate := req.ReturnDate.Time
	if returnDate.IsZero() {
		returnDate = now
	}
	res, err := h.lendingSvc.ReturnBook(c.Request().Context(), borrowingUid, returnDate, now)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ReportLost(c echo.Context) error {
	borrowingUid := c.Param("borrowingUid")
	if borrowingUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "borrowingUid is empty")
	}
	res, err := h.lendingSvc.ReportLost(c.Request().Context(), borrowingUid, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ReserveBook(c echo.Context) error {
	var req model.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.lendingSvc.ReserveBook(c.Request().Context(), req, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	reservationUid := c.Param("reservationUid")
	if reservationUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationUid is empty")
	}
	if err := h.lendingSvc.CancelReservation(c.Request().Context(), reservationUid, time.Now().UTC()); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) IssueFine(c echo.Context) error {
	var req model.IssueFineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fine, err := h.lendingSvc.IssueFine(c.Request().Context(), req, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, fine)
}

func (h *Handler) PayFine(c echo.Context) error {
	fineUid := c.Param("fineUid")
	if fineUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "fineUid is empty")
	}
	var req model.PayFineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fine, err := h.lendingSvc.PayFine(c.Request().Context(), fineUid, req.AmountCents, time.Now().UTC())
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, fine)
}

func (h *Handler) WaiveFine(c echo.Context) error {
	fineUid := c.Param("fineUid")
	if fineUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "fineUid is empty")
	}
	fine, err := h.lendingSvc.WaiveFine(c.Request().Context(), fineUid)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, fine)
}
