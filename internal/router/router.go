package router // package router defines how HTTP routes are registered for the API

import (
	"net/http" // net/http adapts the websocket gateway

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/airport-checkin/internal/handler" // import the handlers that implement the API
)

// RegisterRoutes registers the health check on the provided Echo instance.
// The endpoint can be used by load balancers or monitoring systems to
// verify that the service is up and running.  ping may be nil when no
// database backs the service.
func RegisterRoutes(e *echo.Echo, ping handler.Pinger) {
	e.GET("/healthz", handler.Health(ping))
}

// RegisterFlights registers flight, seat and status routes under /v1.
// The write endpoints (seat assignment and status change) run behind
// the limit middleware; reads are not limited.
func RegisterFlights(e *echo.Echo, h *handler.FlightHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/flights")
	// List every flight with its current status
	g.GET("", h.ListFlights)
	// Look a flight up by its public flight number (e.g. MN123)
	g.GET("/number/:number", h.GetFlightByNumber)
	g.GET("/:id", h.GetFlight)
	// Seat map of a flight.  Use ?available=true for free seats only.
	g.GET("/:id/seats", h.ListSeats)
	g.GET("/:id/seats/:seat", h.GetSeat)

	// Assign a seat and issue the boarding pass.  Competing requests for
	// one seat are arbitrated by the coordinator; losers get 409.
	g.POST("/:id/seats/:seat/assign", h.AssignSeat, limit)
	// Change the flight status; subscribers are notified over /v1/ws
	g.POST("/:id/status", h.UpdateStatus, limit)
}

// RegisterPassengers registers passenger lookups, boarding pass retrieval
// and baggage check-in under /v1/passengers.
func RegisterPassengers(e *echo.Echo, h *handler.PassengerHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/passengers")
	g.GET("/:passport", h.GetPassenger)
	g.GET("/:passport/boarding-pass", h.GetBoardingPass)
	// Register a checked bag (weight in kg, at most 50)
	g.POST("/:passport/baggage", h.CheckBaggage, limit)
}

// RegisterRealtime mounts the websocket endpoint.  Clients subscribe to
// flights and reserve seats over the same connection.
func RegisterRealtime(e *echo.Echo, ws http.Handler) {
	e.GET("/v1/ws", echo.WrapHandler(ws))
}
