package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("close attendance: %w", NoOpenAttendance)

	assert.True(t, Is(err, NoOpenAttendance))
	assert.False(t, Is(err, AuthFailed))

	def, ok := From(err)
	assert.True(t, ok)
	assert.Equal(t, "NO_OPEN_ATTENDANCE", def.Code)
}

func TestFromPlainError(t *testing.T) {
	_, ok := From(fmt.Errorf("dial tcp: refused"))
	assert.False(t, ok)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(LeaveDateReversed))
	assert.True(t, IsValidation(fmt.Errorf("submit: %w", EmployeeRequired)))
	assert.False(t, IsValidation(AuthFailed))
	assert.False(t, IsValidation(nil))
}
