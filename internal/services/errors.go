package services

import "errors"

// Query service errors
var (
	ErrCountryNotFound = errors.New("country not found")
	ErrTableNotLoaded  = errors.New("clean table not loaded")
)
