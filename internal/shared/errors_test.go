package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorStatuses(t *testing.T) {
	cases := []struct {
		err    *Error
		kind   Kind
		status int
	}{
		{Validation("bad input"), KindValidation, http.StatusBadRequest},
		{NotFound("gone"), KindNotFound, http.StatusNotFound},
		{Authentication("who"), KindAuthentication, http.StatusUnauthorized},
		{Authorization("no"), KindAuthorization, http.StatusForbidden},
		{Integrity("conflict"), KindIntegrity, http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.err.Kind)
		assert.Equal(t, tc.status, tc.err.Status)
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", NotFound("course not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusFor(wrapped))
	assert.Equal(t, "course not found", UserSafeMessage(wrapped))
}

func TestUntypedErrorsAreMasked(t *testing.T) {
	err := errors.New("pq: deadlock detected on relation users")
	assert.Equal(t, Kind(""), KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
	assert.Equal(t, "internal error", UserSafeMessage(err))
}
