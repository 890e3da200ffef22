package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard response field keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
	ResponseFieldData    = "data"
)

// MsgUnauthorized is the uniform body of every authentication-gate
// rejection so callers cannot distinguish failure causes.
const MsgUnauthorized = "Unauthorized"

// PaginationParams carries the validated offset/limit of a list request.
type PaginationParams struct {
	Offset int
	Limit  int
}

// ParsePaginationParams parses and clamps offset/limit query parameters
// to the service bounds (offset >= 0, 10 <= limit < 500).
func ParsePaginationParams(c *gin.Context) PaginationParams {
	offsetStr := c.DefaultQuery(QueryParamOffset, DefaultOffset)
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	offset, _ := strconv.Atoi(offsetStr)
	limit, _ := strconv.Atoi(limitStr)

	if offset < MinOffset {
		offset = MinOffset
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Offset: offset,
		Limit:  limit,
	}
}

func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
