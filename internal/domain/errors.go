package domain

import "errors"

var (
	ErrMissingVideo         = errors.New("no video file provided")
	ErrEmptyVideoName       = errors.New("no video file selected")
	ErrInvalidFileType      = errors.New("invalid file type, please upload a video file")
	ErrEmptyVideo           = errors.New("video file is empty")
	ErrMissingPrompt        = errors.New("please provide a prompt")
	ErrMissingPromptTable   = errors.New("no csv file provided")
	ErrEmptyPromptTableName = errors.New("no csv file selected")
	ErrInvalidOrientation   = errors.New("orientation must be landscape or portrait")
	ErrUploadTooLarge       = errors.New("upload exceeds the size limit")
)

// ValidationError reports a request rejected before any remote call was made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps err as a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
