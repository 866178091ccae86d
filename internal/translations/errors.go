package translations

import "errors"

var ErrNotFound = errors.New("translation not found")

const (
	ErrorCodeValidation    = "validation"
	ErrorCodeTimeout       = "translation_timeout"
	ErrorCodeInvalidOutput = "translation_invalid_output"
	ErrorCodeStorage       = "storage"
	ErrorCodeInternal      = "internal"
)
