package events

import "fmt"

const objectName = "eventInput"

// FieldError is one violated rule. The wire shape mirrors the response body:
// objectName, field, code, defaultMessage, rejectedValue.
type FieldError struct {
	ObjectName     string `json:"objectName"`
	Field          string `json:"field"`
	Code           string `json:"code"`
	DefaultMessage string `json:"defaultMessage"`
	RejectedValue  any    `json:"rejectedValue"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.DefaultMessage
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.DefaultMessage)
}

// ValidationErrors aggregates every violated rule from one validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	if len(v) == 1 {
		return v[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
}

// Validation rule codes.
const (
	codeWrongPriceRange = "wrongPriceRange"
	codeWrongDateOrder  = "wrongDateOrder"
)

// ValidateInput is the domain pass: cross-field invariants only. It is pure,
// never short-circuits, and returns every violation found so a response can
// report them all together. Missing-field rejection belongs to the schema
// pass and is not repeated here.
func ValidateInput(in Input) ValidationErrors {
	var errs ValidationErrors

	if in.BasePrice > in.MaxPrice && in.MaxPrice > 0 {
		errs = append(errs,
			FieldError{
				ObjectName:     objectName,
				Field:          "basePrice",
				Code:           codeWrongPriceRange,
				DefaultMessage: "basePrice must not exceed a nonzero maxPrice",
				RejectedValue:  in.BasePrice,
			},
			FieldError{
				ObjectName:     objectName,
				Field:          "maxPrice",
				Code:           codeWrongPriceRange,
				DefaultMessage: "maxPrice must be at least basePrice when nonzero",
				RejectedValue:  in.MaxPrice,
			},
		)
	}

	if in.CloseEnrollment.Before(in.BeginEnrollment) {
		errs = append(errs, FieldError{
			ObjectName:     objectName,
			Field:          "closeEnrollmentDateTime",
			Code:           codeWrongDateOrder,
			DefaultMessage: "closeEnrollmentDateTime must not precede beginEnrollmentDateTime",
			RejectedValue:  in.CloseEnrollment,
		})
	}

	if in.EndEvent.Before(in.BeginEvent) {
		errs = append(errs, FieldError{
			ObjectName:     objectName,
			Field:          "endEventDateTime",
			Code:           codeWrongDateOrder,
			DefaultMessage: "endEventDateTime must not precede beginEventDateTime",
			RejectedValue:  in.EndEvent,
		})
	}

	if in.BeginEvent.Before(in.CloseEnrollment) {
		errs = append(errs, FieldError{
			ObjectName:     objectName,
			Field:          "beginEventDateTime",
			Code:           codeWrongDateOrder,
			DefaultMessage: "beginEventDateTime must not precede closeEnrollmentDateTime",
			RejectedValue:  in.BeginEvent,
		})
	}

	return errs
}
