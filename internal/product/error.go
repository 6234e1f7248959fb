package product

import "errors"

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidPrice = errors.New("product price must not be negative")
	ErrInvalidStock = errors.New("product stock must not be negative")
)
