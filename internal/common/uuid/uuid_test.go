package uuid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New()
	assert.NotEqual(t, Nil, id)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewString(t *testing.T) {
	s := NewString()
	id, err := Parse(s)
	assert.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not-a-uuid")
	assert.Error(t, err)
}

func TestTimeOrdered(t *testing.T) {
	a := NewString()
	b := NewString()
	assert.LessOrEqual(t, a, b)
}
