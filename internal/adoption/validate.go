package adoption

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// MaxItems is the largest number of tools a single audit may evaluate.
const MaxItems = 50

var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-._+#]*$`)

var validate = newValidator()

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request fails boundary validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
}

// ValidateAuditRequest checks req against the evaluation contract and
// returns one error per offending field. Nil means valid.
func ValidateAuditRequest(req models.AuditRequest) []FieldError {
	return fieldErrors(validate.Struct(req))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("toolname", func(fl validator.FieldLevel) bool {
		return toolNamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	v.RegisterStructValidation(airlineRule, models.AuditRequest{})
	return v
}

// airlineRule requires exactly one of airline_id and airline_name.
func airlineRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.AuditRequest)
	switch {
	case req.AirlineID == "" && req.AirlineName == "":
		sl.ReportError(req.AirlineName, "airline_name", "AirlineName", "airline_required", "")
	case req.AirlineID != "" && req.AirlineName != "":
		sl.ReportError(req.AirlineName, "airline_name", "AirlineName", "airline_exclusive", "")
	}
}

// fieldErrors converts validator output into FieldErrors, keeping the first
// failure per field.
func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	seen := make(map[string]bool, len(verrs))
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		if seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, FieldError{Field: field, Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "items":
		if fe.Tag() == "max" {
			return "Too many items"
		}
		return "At least one item is required"
	case "tool_name":
		switch fe.Tag() {
		case "required":
			return "Tool name is required"
		case "max":
			return "Tool name too long"
		default:
			return "Tool name contains invalid characters"
		}
	case "utilization":
		return "Utilization must be between 0 and 100"
	case "sentiment":
		return "Sentiment must be between 0 and 10"
	case "airline_id":
		return "Invalid airline_id format"
	case "airline_name":
		switch fe.Tag() {
		case "airline_required":
			return "Either airline_id or airline_name must be provided"
		case "airline_exclusive":
			return "Provide only one of airline_id or airline_name"
		default:
			return "Airline name too long"
		}
	case "login_count":
		return "login_count must be a whole number of zero or more"
	case "session_duration_minutes":
		if fe.Tag() == "lte" {
			return "session_duration_minutes must be at most 525600"
		}
		return "session_duration_minutes must be zero or more"
	case "sentiment_rating":
		return "sentiment_rating must be between 0 and 10"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
