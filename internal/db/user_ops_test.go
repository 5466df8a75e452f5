package db

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	// A concurrent registration of the same email loses the insert race and
	// surfaces as a unique-constraint error, which must map to ErrEmailTaken.
	dup := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", dup)))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(fmt.Errorf("connection reset")))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"})) // FK violation
}
