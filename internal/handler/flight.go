// Package handler exposes the HTTP API of the check-in desk.  Handlers are
// thin: they parse the request, call the coordinator and map its errors to
// status codes and reason codes.
package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airport-checkin/internal/model"
    "github.com/iliyamo/airport-checkin/internal/service"
)

// FlightHandler serves flight, seat and status endpoints.
type FlightHandler struct {
    Svc *service.Coordinator
}

// NewFlightHandler panics when svc is nil.
func NewFlightHandler(svc *service.Coordinator) *FlightHandler {
    if svc == nil {
        panic("nil coordinator passed to NewFlightHandler")
    }
    return &FlightHandler{Svc: svc}
}

// ListFlights handles GET /v1/flights.
func (h *FlightHandler) ListFlights(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.Flights()})
}

// GetFlight handles GET /v1/flights/:id.
func (h *FlightHandler) GetFlight(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return badRequest(c, "invalid flight id")
    }
    f, err := h.Svc.Flight(id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, f)
}

// GetFlightByNumber handles GET /v1/flights/number/:number.
func (h *FlightHandler) GetFlightByNumber(c echo.Context) error {
    f, err := h.Svc.FlightByNumber(c.Param("number"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, f)
}

// ListSeats handles GET /v1/flights/:id/seats.  ?available=true limits the
// result to free seats.
func (h *FlightHandler) ListSeats(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return badRequest(c, "invalid flight id")
    }
    availableOnly, _ := strconv.ParseBool(c.QueryParam("available"))
    seats, err := h.Svc.Seats(id, availableOnly)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": seats, "count": len(seats)})
}

// GetSeat handles GET /v1/flights/:id/seats/:seat.
func (h *FlightHandler) GetSeat(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return badRequest(c, "invalid flight id")
    }
    seat, err := h.Svc.Seat(id, c.Param("seat"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, seat)
}

type assignSeatRequest struct {
    PassportNumber string `json:"passport_number"`
}

// AssignSeat handles POST /v1/flights/:id/seats/:seat/assign.
func (h *FlightHandler) AssignSeat(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return badRequest(c, "invalid flight id")
    }
    var req assignSeatRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if strings.TrimSpace(req.PassportNumber) == "" {
        return badRequest(c, "passport_number is required")
    }
    res, err := h.Svc.AssignSeat(c.Request().Context(), id, c.Param("seat"), req.PassportNumber)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

type updateStatusRequest struct {
    Status string `json:"status"`
}

// UpdateStatus handles POST /v1/flights/:id/status.
func (h *FlightHandler) UpdateStatus(c echo.Context) error {
    id, ok := parseID(c.Param("id"))
    if !ok {
        return badRequest(c, "invalid flight id")
    }
    var req updateStatusRequest
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    status, err := model.ParseFlightStatus(strings.TrimSpace(req.Status))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ReasonInvalidStatus, "message": err.Error()})
    }
    f, err := h.Svc.UpdateFlightStatus(c.Request().Context(), id, status)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, f)
}

func parseID(s string) (uint64, bool) {
    id, err := strconv.ParseUint(s, 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}
