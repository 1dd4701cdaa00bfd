package repository

import "errors"

var (
	ErrNotFound          = errors.New("resource not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicate         = errors.New("duplicate resource")
	ErrInvalidInput      = errors.New("invalid input data")
	ErrInsufficientStock = errors.New("insufficient stock")
)
