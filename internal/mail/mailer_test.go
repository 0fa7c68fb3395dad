package mail_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthostel/backend/internal/config"
	"github.com/smarthostel/backend/internal/mail"
)

func TestRenderActivation(t *testing.T) {
	body, err := mail.RenderActivation(mail.ActivationData{
		Name:       "Ana",
		Code:       "1234",
		TTLMinutes: 5,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Ana,")
	assert.Contains(t, body, "1234")
	assert.Contains(t, body, "5 minutes")
}

func TestSendActivationFallsBackToLogFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// No SMTP host configured: delivery lands in logs/mail.log.
	m := mail.NewMailer(config.SMTPConfig{})
	err = m.SendActivation("ana@x.com", mail.ActivationData{Name: "Ana", Code: "4321", TTLMinutes: 5})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "logs", "mail.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "To: ana@x.com")
	assert.Contains(t, string(raw), "4321")
}
