package constants

// Pagination query parameters
const (
	QueryParamOffset  = "offset"
	QueryParamLimit   = "limit"
	QueryParamName    = "name"
	QueryParamSurname = "surname"
	QueryParamEmail   = "email"
)

// Default pagination values (as strings for query parsing)
const (
	DefaultOffset = "0"
	DefaultLimit  = "10"
)

// Pagination bounds (as integers for validation)
const (
	MinOffset = 0
	MinLimit  = 10
	MaxLimit  = 499
)
