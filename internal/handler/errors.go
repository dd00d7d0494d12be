package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airport-checkin/internal/service"
)

// fail writes the JSON error body used by every endpoint:
// {"error": <reason code>, "message": <detail>}.
func fail(c echo.Context, err error) error {
    return c.JSON(service.HTTPStatus(err), echo.Map{
        "error":   service.Reason(err),
        "message": err.Error(),
    })
}

// badRequest answers 400 with the invalid_request reason.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": service.ReasonInvalidRequest, "message": msg})
}
