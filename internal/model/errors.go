package model

import "errors"

var (
	// ErrMalformedBody is returned when a record is not an object or a field value cannot be parsed.
	ErrMalformedBody = errors.New("invalid product: body of request contained bad or no data")

	// ErrMissingField is returned when a required key is absent from a record.
	ErrMissingField = errors.New("invalid product: missing field")

	// ErrInvalidType is returned when a strictly typed field holds a value of another type.
	ErrInvalidType = errors.New("invalid type")

	// ErrInvalidAttribute is returned when a category name is not one of the declared categories.
	ErrInvalidAttribute = errors.New("invalid attribute")
)
