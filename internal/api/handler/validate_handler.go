package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

type ValidateHandler struct {
	validator *validation.Validator
}

func NewValidateHandler(v *validation.Validator) *ValidateHandler {
	return &ValidateHandler{validator: v}
}

type validateResponse struct {
	Valid      bool                   `json:"valid"`
	Errors     validation.FieldErrors `json:"errors"`
	Normalized map[string]string      `json:"normalized,omitempty"`
}

// Validate runs the sign-up or sign-in form rules without calling the backend.
//
// @Summary      Validate a form
// @Tags         validation
// @Accept       json
// @Produce      json
// @Param        form  path      string  true  "Form"  Enums(registration, login)
// @Success      200   {object}  validateResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/validate/{form} [post]
func (h *ValidateHandler) Validate(c echo.Context) error {
	switch c.Param("form") {
	case "registration":
		var req validation.RegistrationForm
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		errs := h.validator.Check(&req)
		normalized := map[string]string{"email": domain.NormalizeEmail(req.Email)}
		if mobile, err := domain.NormalizeMobile(req.Mobile); err == nil {
			normalized["mobile"] = mobile
		}
		return c.JSON(http.StatusOK, newValidateResponse(errs, normalized))
	case "login":
		var req validation.LoginForm
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		errs := h.validator.Check(&req)
		return c.JSON(http.StatusOK, newValidateResponse(errs, map[string]string{
			"email": domain.NormalizeEmail(req.Email),
		}))
	}
	return echo.NewHTTPError(http.StatusNotFound, "unknown form")
}

func newValidateResponse(errs validation.FieldErrors, normalized map[string]string) validateResponse {
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	return validateResponse{Valid: len(errs) == 0, Errors: errs, Normalized: normalized}
}
