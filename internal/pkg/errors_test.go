package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Validationf("title too long"), "validation"},
		{Referencef("user %d", 1), "reference"},
		{Conflictf("dup"), "conflict"},
		{Authorizationf("no"), "authorization"},
		{NotFoundf("event %d", 9), "not_found"},
		{Expiredf("old"), "expired"},
		{Integrityf("gap"), "integrity"},
		{fmt.Errorf("store: %w", NotFoundf("x")), "not_found"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), tt.err.Error())
	}
}

func TestWrappedMessageKeepsDetail(t *testing.T) {
	err := NotFoundf("event %d", 42)
	assert.EqualError(t, err, "not found: event 42")
	assert.False(t, errors.Is(err, ErrConflict))
}
