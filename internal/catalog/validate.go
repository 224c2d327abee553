package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"launchpad/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeForm trims the form, upper-cases the symbol and de-duplicates tags
// keeping first occurrence order. Empty optional strings become nil.
func normalizeForm(form models.SubmissionForm) models.SubmissionForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Symbol = strings.ToUpper(strings.TrimSpace(form.Symbol))
	form.Description = strings.TrimSpace(form.Description)
	form.TokenAddress = strings.TrimSpace(form.TokenAddress)
	form.TokenMint = strings.TrimSpace(form.TokenMint)

	for _, field := range []**string{
		&form.Website, &form.Twitter, &form.Telegram, &form.Discord,
		&form.Github, &form.LogoURL, &form.BannerURL,
	} {
		if *field == nil {
			continue
		}
		trimmed := strings.TrimSpace(**field)
		if trimmed == "" {
			*field = nil
			continue
		}
		*field = &trimmed
	}

	seen := make(map[string]struct{}, len(form.Tags))
	tags := make([]string, 0, len(form.Tags))
	for _, tag := range form.Tags {
		tag = strings.TrimSpace(tag)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	form.Tags = tags
	return form
}

func validateForm(form models.SubmissionForm) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal("validate submission", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fieldName(fe)
		if _, ok := fields[name]; ok {
			continue
		}
		fields[name] = describe(fe)
	}
	return validationError("Validation failed", fields)
}

// fieldName strips the struct prefix, keeping slice indexes such as tags[2]
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
