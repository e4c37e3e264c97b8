// Package validation turns raw form/JSON fields into validated task payloads.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"todoboard/internal/models"
)

const (
	TitleMaxLength   = 100
	ContentMaxLength = 500
)

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RawTask is the untyped payload as submitted.
type RawTask struct {
	Title         string   `json:"title" form:"title"`
	Content       string   `json:"content" form:"content"`
	Status        string   `json:"status" form:"status"`
	AISuggestions []string `json:"aiSuggestions" form:"aiSuggestions"`
}

type taskSchema struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Content       string   `json:"content" validate:"max=500"`
	Status        string   `json:"status" validate:"required,taskstatus"`
	AISuggestions []string `json:"aiSuggestions" validate:"dive,max=100"`
}

var messages = map[string]map[string]string{
	"title": {
		"required": "Title is required",
		"max":      "Title is too long",
	},
	"content": {
		"max": "Content is too long",
	},
	"status": {
		"required":   models.ErrInvalidStatus.Error(),
		"taskstatus": models.ErrInvalidStatus.Error(),
	},
	"aiSuggestions": {
		"max": "AI suggestion is too long",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "taskstatus", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).IsValid()
	})
	return v
}

// mustRegister panics on a bad tag so a broken validator never reaches a request.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Task validates a create/update payload. Title and suggestions are trimmed,
// blank suggestions dropped. Content is optional.
func Task(raw RawTask) (models.TaskInput, error) {
	schema := taskSchema{
		Title:   strings.TrimSpace(raw.Title),
		Content: raw.Content,
		Status:  strings.TrimSpace(raw.Status),
	}
	for _, s := range raw.AISuggestions {
		if s = strings.TrimSpace(s); s != "" {
			schema.AISuggestions = append(schema.AISuggestions, s)
		}
	}

	if err := validate.Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.TaskInput{}, fmt.Errorf("validate task: %w", err)
		}
		return models.TaskInput{}, toFieldErrors(verrs)
	}

	return models.TaskInput{
		Title:         schema.Title,
		Content:       schema.Content,
		Status:        models.TaskStatus(schema.Status),
		AISuggestions: schema.AISuggestions,
	}, nil
}

func toFieldErrors(verrs validator.ValidationErrors) FieldErrors {
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		// aiSuggestions[2] -> aiSuggestions
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out[field] = msg
	}
	return out
}

// RequiredFieldError is returned by RequireString.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return e.Field + " is required"
}

// RequireString ensures a single submitted value is a non-blank string.
func RequireString(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &RequiredFieldError{Field: field}
	}
	return value, nil
}
