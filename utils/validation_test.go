package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestBindAndValidate_InvalidJSON(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	var out sampleRequest
	err := BindAndValidate(w, r, v, &out)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestBindAndValidate_ValidationFailure(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","email":"not-an-email"}`))
	w := httptest.NewRecorder()

	var out sampleRequest
	err := BindAndValidate(w, r, v, &out)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "sampleRequest.Name")
	assert.Contains(t, body.Fields, "sampleRequest.Email")
}

func TestBindAndValidate_Success(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	w := httptest.NewRecorder()

	var out sampleRequest
	err := BindAndValidate(w, r, v, &out)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", out.Name)
	assert.Equal(t, "ada@example.com", out.Email)
}
