package recognition

import "errors"

var (
	ErrNoMatch         = errors.New("face does not match any registered employee")
	ErrNoCandidates    = errors.New("no employees are enrolled yet")
	ErrInvalidEncoding = errors.New("encoding must contain exactly 128 finite numbers")
)
