// Package validation holds the form rules applied before anything is sent to
// the backend. The rules are pure: they never touch the network.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

const MinPasswordLength = 8

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrNameInvalid   = errors.New("name must contain only letters and spaces")
	ErrEmailInvalid  = errors.New("please enter a valid email address")
	ErrMobileInvalid = errors.New("mobile number must be a valid 10-digit number")
	ErrPasswordWeak  = fmt.Errorf("password must be at least %d characters and include uppercase, lowercase, number and special character", MinPasswordLength)
)

// ValidateName accepts a non-empty name made of letters and spaces.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if !namePattern.MatchString(name) {
		return ErrNameInvalid
	}
	return nil
}

// ValidateEmail accepts local@domain.tld shaped addresses.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateMobile accepts anything NormalizeMobile can reduce to 10 digits.
func ValidateMobile(mobile string) error {
	if _, err := domain.NormalizeMobile(mobile); err != nil {
		return ErrMobileInvalid
	}
	return nil
}

// ValidatePassword requires MinPasswordLength characters with at least one
// lowercase letter, uppercase letter, digit and non-alphanumeric character.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordWeak
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrPasswordWeak
	}
	return nil
}

// FieldErrors maps a JSON field name to the message shown next to that field.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+fe[k])
	}
	return strings.Join(msgs, "; ")
}

// RegistrationForm is the base account form shared by every role.
type RegistrationForm struct {
	Name     string `json:"name"     form:"name"     validate:"personname"`
	Email    string `json:"email"    form:"email"    validate:"required,emailaddr"`
	Mobile   string `json:"mobile"   form:"mobile"   validate:"required,mobile"`
	Password string `json:"password" form:"password" validate:"required,password"`
	// Role profiles are attached only through the multipart route, so the JSON
	// form is limited to players.
	Role string `json:"role,omitempty" form:"role" validate:"omitempty,oneof=user"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email"    validate:"required,emailaddr"`
	Password string `json:"password" validate:"required"`
}

// Validator runs the form rules through go-playground/validator so struct tags
// and the standalone functions can never drift apart.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	register := func(tag string, rule func(string) error) {
		// Only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String()) == nil
		})
	}
	register("personname", ValidateName)
	register("emailaddr", ValidateEmail)
	register("mobile", ValidateMobile)
	register("password", ValidatePassword)

	return &Validator{v: v}
}

// Check validates i and returns nil or the per-field messages.
func (v *Validator) Check(i any) FieldErrors {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return FieldErrors{"_": err.Error()}
	}

	out := make(FieldErrors, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

// Validate satisfies echo.Validator.
func (v *Validator) Validate(i any) error {
	if fe := v.Check(i); fe != nil {
		return fe
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "personname":
		return ValidateName(fe.Value().(string)).Error()
	case "emailaddr":
		return ErrEmailInvalid.Error()
	case "mobile":
		return ErrMobileInvalid.Error()
	case "password":
		return ErrPasswordWeak.Error()
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
