package doctor

import "errors"

var (
	ErrValidation    = errors.New("invalid doctor request")
	ErrNotFound      = errors.New("doctor not found")
	ErrAlreadyExists = errors.New("doctor already exists")
)
