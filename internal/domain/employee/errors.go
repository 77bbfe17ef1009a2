package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidEncoding  = errors.New("face encoding must contain exactly 128 finite numbers")
)
