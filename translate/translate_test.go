package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(SetLanguage("en-US"))
	assert.Equal("fault at 0x0010", From("fault at 0x%04x", 16))
	assert.Equal("1,234 bytes", From("%d bytes", 1234))

	assert.Error(SetLanguage("not a language tag!"))
}
