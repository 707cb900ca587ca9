package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/brigade/pkg/httpx"
)

// maxBodyBytes caps request bodies; the largest inventory request is an item
// with a few hundred bytes of notes.
const maxBodyBytes = 64 << 10

var itemCodePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// itemcode: letters, digits, dot, dash and underscore, as stored upper-cased.
	_ = validate.RegisterValidation("itemcode", func(fl validator.FieldLevel) bool {
		return itemCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	// notblank: rejects strings made only of whitespace.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors maps each failing JSON field name to a message.
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs
	}
	for _, e := range ve {
		errs[e.Field()] = formatFieldError(e)
	}
	return errs
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "max":
		if isNumber(e.Kind()) {
			return fmt.Sprintf("Must be at most %s", e.Param())
		}
		return fmt.Sprintf("Maximum length is %s", e.Param())
	case "min":
		if isNumber(e.Kind()) {
			return fmt.Sprintf("Must be at least %s", e.Param())
		}
		return fmt.Sprintf("Minimum length is %s", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("Must be a date in %s layout", e.Param())
	case "itemcode":
		return "Must contain only letters, digits, '.', '-' and '_'"
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ValidateRequest decodes the JSON body into T and validates it. Malformed
// JSON, unknown fields and oversized bodies get a 400; failed validation a
// 422 with per-field messages. Returns (nil, false) once a response is written.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
