package events

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Input carries the client-supplied event fields. Identifier, status, and
// the computed flags are never accepted as authoritative; anything a client
// sends for them is dropped by the decoder before this type is populated.
//
// The validator tags are the schema pass: missing or zero required fields are
// rejected here, before the domain pass in ValidateInput runs.
type Input struct {
	Name              string    `json:"name" validate:"required"`
	Description       string    `json:"description" validate:"required"`
	BeginEnrollment   time.Time `json:"beginEnrollmentDateTime" validate:"required"`
	CloseEnrollment   time.Time `json:"closeEnrollmentDateTime" validate:"required"`
	BeginEvent        time.Time `json:"beginEventDateTime" validate:"required"`
	EndEvent          time.Time `json:"endEventDateTime" validate:"required"`
	BasePrice         int       `json:"basePrice"`
	MaxPrice          int       `json:"maxPrice"`
	LimitOfEnrollment int       `json:"limitOfEnrollment"`
	Location          string    `json:"location"`
}

var schemaValidator = validator.New(validator.WithRequiredStructEnabled())

// jsonFieldNames maps struct field names to their wire names so schema errors
// report the same field names clients sent.
var jsonFieldNames = map[string]string{
	"Name":              "name",
	"Description":       "description",
	"BeginEnrollment":   "beginEnrollmentDateTime",
	"CloseEnrollment":   "closeEnrollmentDateTime",
	"BeginEvent":        "beginEventDateTime",
	"EndEvent":          "endEventDateTime",
	"BasePrice":         "basePrice",
	"MaxPrice":          "maxPrice",
	"LimitOfEnrollment": "limitOfEnrollment",
	"Location":          "location",
}

// ValidateSchema runs the binding-level pass over in: required fields must be
// present. Cross-field rules live in ValidateInput, not here, and negative
// prices are not rejected anywhere; only relative ordering is checked.
func ValidateSchema(in Input) ValidationErrors {
	err := schemaValidator.Struct(in)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{
			ObjectName:     objectName,
			Code:           "invalid",
			DefaultMessage: err.Error(),
		}}
	}

	errs := make(ValidationErrors, 0, len(invalid))
	for _, fe := range invalid {
		field := jsonFieldNames[fe.StructField()]
		if field == "" {
			field = fe.StructField()
		}
		errs = append(errs, FieldError{
			ObjectName:     objectName,
			Field:          field,
			Code:           fe.Tag(),
			DefaultMessage: "must not be empty",
			RejectedValue:  fe.Value(),
		})
	}
	return errs
}
