package resumes

import "errors"

var (
	ErrNotFound        = errors.New("resume not found")
	ErrForbidden       = errors.New("resume belongs to another job seeker")
	ErrValidation      = errors.New("invalid resume upload")
	ErrUnsupportedType = errors.New("unsupported resume file type")
	ErrTooLarge        = errors.New("resume file too large")
	ErrPresignDisabled = errors.New("direct uploads not configured")
)
