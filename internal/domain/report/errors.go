package report

import "errors"

var (
	ErrNotFound                = errors.New("report not found")
	ErrForbidden               = errors.New("not authorized for this report")
	ErrInvalidType             = errors.New("report type must be lost or found")
	ErrItemNameRequired        = errors.New("item name is required")
	ErrItemDescriptionRequired = errors.New("item description is required")
	ErrLocationRequired        = errors.New("location is required")
	ErrContactInfoRequired     = errors.New("contact info is required for found reports")
	ErrOwnerRequired           = errors.New("report owner is required")
)

// IsValidation reports whether err is one of the required-field errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrItemNameRequired) ||
		errors.Is(err, ErrItemDescriptionRequired) ||
		errors.Is(err, ErrLocationRequired) ||
		errors.Is(err, ErrContactInfoRequired)
}
