package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOP3DefaultPort(t *testing.T) {
	plain := NewPOP3("mail.example.com", 0, "u", "p", false, 0, discardLogger())
	assert.Equal(t, 110, plain.port)

	tls := NewPOP3("mail.example.com", 0, "u", "p", true, 0, discardLogger())
	assert.Equal(t, 995, tls.port)

	explicit := NewPOP3("mail.example.com", 2110, "u", "p", true, 0, discardLogger())
	assert.Equal(t, 2110, explicit.port)
}

func TestIMAPDefaultPort(t *testing.T) {
	plain := NewIMAP("mail.example.com", 0, "u", "p", false, "", 0, discardLogger())
	assert.Equal(t, 143, plain.port)

	tls := NewIMAP("mail.example.com", 0, "u", "p", true, "", 0, discardLogger())
	assert.Equal(t, 993, tls.port)

	explicit := NewIMAP("mail.example.com", 2993, "u", "p", true, "", 0, discardLogger())
	assert.Equal(t, 2993, explicit.port)
}
