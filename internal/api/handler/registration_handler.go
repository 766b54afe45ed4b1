package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

type RegistrationConfig struct {
	ParseTimeout time.Duration
	MaxMemory    int64
}

type RegistrationHandler struct {
	service ports.RegistrationService
	keeper  sessionKeeper
	cfg     RegistrationConfig
	log     zerolog.Logger
}

func NewRegistrationHandler(
	service ports.RegistrationService,
	sessions ports.SessionService,
	cookie middleware.SessionCookie,
	cfg RegistrationConfig,
	log zerolog.Logger,
) *RegistrationHandler {
	if cfg.ParseTimeout <= 0 {
		cfg.ParseTimeout = 10 * time.Second
	}
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = 32 << 20
	}
	return &RegistrationHandler{
		service: service,
		keeper:  sessionKeeper{sessions: sessions, cookie: cookie, log: log},
		cfg:     cfg,
		log:     log,
	}
}

// RegisterRole proxies a multipart registration: base account first, then the
// role profile with any uploaded files.
//
// @Summary      Register with a role profile
// @Tags         registration
// @Accept       mpfd
// @Produce      json
// @Param        role      path      string  true  "Role"  Enums(player, coach, store, delivery)
// @Param        name      formData  string  true  "Full name"
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Param        mobile    formData  string  true  "Mobile number"
// @Success      201       {object}  map[string]interface{}
// @Failure      400       {object}  messageResponse
// @Failure      404       {object}  messageResponse
// @Failure      408       {object}  messageResponse
// @Failure      500       {object}  messageResponse
// @Router       /api/register/{role} [post]
func (h *RegistrationHandler) RegisterRole(c echo.Context) error {
	role, err := domain.RoleFromPath(c.Param("role"))
	if err != nil {
		return err
	}

	form, err := parseMultipart(c.Request(), h.cfg.MaxMemory, h.cfg.ParseTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			h.log.Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	files, err := readFiles(form)
	if err != nil {
		h.log.Error().Err(err).Str("role", string(role)).Msg("failed to read uploaded file")
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}

	out, err := h.service.Register(c.Request().Context(), ports.RegistrationInput{
		Role:   role,
		Fields: form.Value,
		Files:  files,
	})
	if err != nil {
		return err
	}

	h.keeper.start(c, out.Token, userField(out.Payload))
	return c.JSON(out.Status, out.Payload)
}

// Register is the JSON registration used by the player sign-up form. It runs
// the full form rules before anything is sent to the backend.
//
// @Summary      Register a player
// @Tags         registration
// @Accept       json
// @Produce      json
// @Param        body  body      validation.RegistrationForm  true  "Registration form"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/auth/register [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req validation.RegistrationForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.service.Register(c.Request().Context(), ports.RegistrationInput{
		Role: domain.RolePlayer,
		Fields: map[string][]string{
			"name":     {req.Name},
			"email":    {req.Email},
			"password": {req.Password},
			"mobile":   {req.Mobile},
		},
	})
	if err != nil {
		return err
	}

	h.keeper.start(c, out.Token, userField(out.Payload))
	return c.JSON(out.Status, out.Payload)
}

type parsedForm struct {
	form *multipart.Form
	err  error
}

// parseMultipart reads the form in a goroutine raced against timeout. The
// loser is discarded; a form that finishes after the deadline has its temp
// files removed.
func parseMultipart(req *http.Request, maxMemory int64, timeout time.Duration) (*multipart.Form, error) {
	mr, err := req.MultipartReader()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "expected multipart/form-data")
	}

	done := make(chan parsedForm, 1)
	go func() {
		form, err := mr.ReadForm(maxMemory)
		done <- parsedForm{form: form, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", res.err))
		}
		return res.form, nil
	case <-timer.C:
		go discardLate(done)
		return nil, domain.ErrFormParseTimeout
	case <-req.Context().Done():
		go discardLate(done)
		return nil, req.Context().Err()
	}
}

func discardLate(done <-chan parsedForm) {
	if res := <-done; res.form != nil {
		_ = res.form.RemoveAll()
	}
}

func readFiles(form *multipart.Form) ([]ports.FileUpload, error) {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var files []ports.FileUpload
	for _, field := range fields {
		for _, fh := range form.File[field] {
			data, err := readFile(fh)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			files = append(files, ports.FileUpload{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Data:        data,
			})
		}
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
