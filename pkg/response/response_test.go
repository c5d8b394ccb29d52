package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUserEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	User(c, http.StatusCreated, "created", map[string]string{"name": "Ann"})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "created", body["message"])
	require.Equal(t, "rid-1", body["request_id"])
	require.Equal(t, "Ann", body["user"].(map[string]any)["name"])
	require.NotContains(t, body, "error")
	require.NotContains(t, body, "data")
}

func TestErrorEnvelopeAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, 0, "bad", nil)

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "bad", body["message"])
}
