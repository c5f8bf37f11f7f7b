package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Success(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	r := decode(t, w)
	assert.Equal(t, 0, r.Code)
	assert.Equal(t, map[string]interface{}{"hello": "world"}, r.Data)
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	InternalError(c, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	r := decode(t, w)
	assert.Equal(t, http.StatusInternalServerError, r.Code)
	assert.Equal(t, "internal server error", r.Message)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)
}

func TestFailAborts(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	NotFound(c, "post not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "post not found", decode(t, w).Message)
	assert.True(t, c.IsAborted())
}
