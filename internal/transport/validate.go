package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edufiliova/navigator/internal/openapi"
	"github.com/edufiliova/navigator/model"
)

const maxBodyBytes = 64 << 10

// custom validation tags
const (
	pageStateTag       = "page_state"
	transitionStyleTag = "transition_style"
	roleTag            = "nav_role"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(pageStateTag, func(fl validator.FieldLevel) bool {
		return model.PageState(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation(transitionStyleTag, func(fl validator.FieldLevel) bool {
		return model.TransitionStyle(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		return raw == "" || model.ParseRole(raw) == model.Role(strings.ToLower(raw))
	})
	return v
}

// requestDecoder reads JSON bodies, checks them against the API document and
// then against the struct's validate tags.
type requestDecoder struct {
	api      *openapi.Index
	validate *validator.Validate
}

func newRequestDecoder(api *openapi.Index) *requestDecoder {
	return &requestDecoder{api: api, validate: newValidator()}
}

// decode fills dst from the request body. operationID selects the
// request schema; an empty body is treated as {}.
func (d *requestDecoder) decode(r *http.Request, operationID string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return model.NewBadRequestError("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return model.NewBadRequestError("request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.NewBadRequestError("invalid JSON body")
	}

	var details []model.FieldError
	if d.api != nil {
		for _, ve := range d.api.ValidateRequest(operationID, raw) {
			details = append(details, model.FieldError{Field: ve.Field, Code: "SCHEMA", Message: ve.Message})
		}
	}
	if len(details) > 0 {
		return model.NewValidationError(details)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return model.NewBadRequestError("invalid JSON body")
	}
	return d.check(dst)
}

func (d *requestDecoder) check(v any) error {
	err := d.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewBadRequestError(err.Error())
	}
	details := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, model.FieldError{
			Field:   fieldPath(fe),
			Code:    strings.ToUpper(fe.Tag()),
			Message: fieldMessage(fe),
		})
	}
	return model.NewValidationError(details)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	case pageStateTag:
		return fmt.Sprintf("%q is not a known page state", fe.Value())
	case transitionStyleTag:
		return fmt.Sprintf("%q is not a transition style", fe.Value())
	case roleTag:
		return fmt.Sprintf("%q is not a known role", fe.Value())
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
