package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading cart: %w", NotFound("Cart not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("db down"))))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidInput:      http.StatusBadRequest,
		KindInvalidState:      http.StatusBadRequest,
		KindInvalidTransition: http.StatusBadRequest,
		KindUnauthenticated:   http.StatusUnauthorized,
		KindForbidden:         http.StatusForbidden,
		KindNotFound:          http.StatusNotFound,
		KindPayloadTooLarge:   http.StatusRequestEntityTooLarge,
		KindInternal:          http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), k.String())
	}
}

func TestWrapKeepsMessage(t *testing.T) {
	cause := errors.New("duplicate key")
	err := InvalidInput("Email is already registered").Wrap(cause)
	assert.Equal(t, "Email is already registered", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
