package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("where is my order?", 1000))
	assert.Error(t, ValidateMessage("", 1000))
	assert.Error(t, ValidateMessage(strings.Repeat("a", 1001), 1000))
	assert.Error(t, ValidateMessage(string([]byte{0xff, 0xfe}), 1000))

	// Length is counted in runes, not bytes.
	assert.NoError(t, ValidateMessage(strings.Repeat("ü", 1000), 1000))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("web-chat-12345"))
	assert.Error(t, ValidateSessionID(""))
	assert.Error(t, ValidateSessionID(strings.Repeat("s", 129)))
}

func TestValidateCustomerID(t *testing.T) {
	assert.NoError(t, ValidateCustomerID(""))
	assert.NoError(t, ValidateCustomerID("cust-42"))
	assert.Error(t, ValidateCustomerID(strings.Repeat("c", 65)))
}
