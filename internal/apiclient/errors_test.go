package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"credenciais inválidas","message":"nope"}`, "credenciais inválidas"},
		{"message second", `{"message":"validation failed"}`, "validation failed"},
		{"error third", `{"error":"forbidden"}`, "forbidden"},
		{"generic fallback", `{"code":42}`, "request failed"},
		{"non-json body", `<html>boom</html>`, "request failed"},
		{"empty detail skipped", `{"detail":"","message":"real"}`, "real"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHTTPError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, http.StatusBadRequest, err.Status)
			assert.Equal(t, []byte(tt.body), err.Data)
		})
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{0, KindNetwork},
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusNotFound, KindOther},
	}

	for _, tt := range tests {
		err := &Error{Status: tt.status}
		assert.Equal(t, tt.want, err.Kind(), "status %d", tt.status)
	}
}

func TestNetworkErrorShape(t *testing.T) {
	err := newNetworkError(errors.New("dial tcp: connection refused"))

	assert.Equal(t, 0, err.Status)
	assert.Contains(t, err.Message, "could not reach server")
	assert.Equal(t, KindNetwork, err.Kind())
}

func TestAsErrorUnwraps(t *testing.T) {
	inner := &Error{Message: "boom", Status: 500}
	wrapped := fmt.Errorf("call failed: %w", inner)

	got, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, inner, got)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestMessagePrefersNormalized(t *testing.T) {
	assert.Equal(t, "boom", Message(&Error{Message: "boom", Status: 401}))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
