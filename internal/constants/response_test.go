package constants

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationFor(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/contacts"+query, nil)
	return ParsePaginationParams(c)
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		offset int
		limit  int
	}{
		{"defaults", "", 0, 10},
		{"explicit values", "?offset=20&limit=50", 20, 50},
		{"negative offset clamped", "?offset=-5", 0, 10},
		{"limit below minimum clamped", "?limit=3", 0, 10},
		{"limit above maximum clamped", "?limit=1000", 0, 499},
		{"limit at upper bound", "?limit=499", 0, 499},
		{"garbage falls back", "?offset=abc&limit=xyz", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paginationFor(t, tt.query)
			assert.Equal(t, tt.offset, p.Offset)
			assert.Equal(t, tt.limit, p.Limit)
		})
	}
}

func TestBuildResponses(t *testing.T) {
	success := BuildSuccessResponse("Email confirmed")
	assert.Equal(t, "Email confirmed", success[ResponseFieldMessage])

	errResp := BuildErrorResponse("Invalid request format", "field missing")
	assert.Equal(t, "Invalid request format", errResp[ResponseFieldMessage])
	assert.Equal(t, "field missing", errResp[ResponseFieldDetails])

	noDetails := BuildErrorResponse("Unauthorized", nil)
	_, hasDetails := noDetails[ResponseFieldDetails]
	assert.False(t, hasDetails)
}
