package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	assert.True(t, Email("alice@example.com"))
	assert.False(t, Email("alice"))
	assert.False(t, Email("alice@"))
	assert.False(t, Email(""))
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("+15550100"))
	assert.True(t, Phone("+442071838750"))
	assert.False(t, Phone("555-0100"))
	assert.False(t, Phone("15550100"))
	assert.False(t, Phone(""))
}

func TestStruct(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	require.NoError(t, Struct(form{Name: "alice", Email: "alice@example.com"}))

	err := Struct(form{Name: "", Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
	assert.Contains(t, err.Error(), "Email")
}
