package handler

import "github.com/labstack/echo/v4"

// envelope is the canonical success body: {"success": true, "message": ..., <data>}.
type envelope map[string]any

// respond renders the success envelope. Extra data keys are merged at the
// top level so clients read e.g. {"success":true,"bookings":[...]}.
func respond(c echo.Context, status int, message string, data envelope) error {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(status, body)
}
