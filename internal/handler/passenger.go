package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airport-checkin/internal/service"
)

// PassengerHandler serves passenger lookups, boarding passes and baggage.
type PassengerHandler struct {
    Svc *service.Coordinator
}

// NewPassengerHandler panics when svc is nil.
func NewPassengerHandler(svc *service.Coordinator) *PassengerHandler {
    if svc == nil {
        panic("nil coordinator passed to NewPassengerHandler")
    }
    return &PassengerHandler{Svc: svc}
}

// GetPassenger handles GET /v1/passengers/:passport.
func (h *PassengerHandler) GetPassenger(c echo.Context) error {
    st, err := h.Svc.Passenger(c.Request().Context(), c.Param("passport"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// GetBoardingPass handles GET /v1/passengers/:passport/boarding-pass.
func (h *PassengerHandler) GetBoardingPass(c echo.Context) error {
    bp, err := h.Svc.BoardingPass(c.Request().Context(), c.Param("passport"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, bp)
}

type checkBaggageRequest struct {
    Weight float64 `json:"weight"`
}

// CheckBaggage handles POST /v1/passengers/:passport/baggage.
func (h *PassengerHandler) CheckBaggage(c echo.Context) error {
    var req checkBaggageRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    bag, err := h.Svc.CheckBaggage(c.Request().Context(), c.Param("passport"), req.Weight)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, bag)
}
