package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := &Profile{}
		require.NoError(t, p.Validate())
		assert.Equal(t, "demo", p.Mode)
		assert.Equal(t, "memory", p.Driver)
		assert.Equal(t, 5, p.DispatchIntervalMinutes)
	})

	t.Run("sqlite fills dsn", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
		require.NoError(t, p.Validate())
		assert.Contains(t, p.DSN, "habla_dev.db")
	})

	t.Run("firestore requires project", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "firestore"}
		assert.Error(t, p.Validate())

		p.FirestoreProject = "habla-prod"
		assert.NoError(t, p.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		p := &Profile{Driver: "postgres"}
		assert.Error(t, p.Validate())
	})

	t.Run("negative tolerance", func(t *testing.T) {
		p := &Profile{ToleranceMinutes: -1}
		assert.Error(t, p.Validate())
	})
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HABLA_DEFAULT_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("HABLA_EVALUATOR_API_KEY", "test-key")
	t.Setenv("HABLA_VAPID_SUBJECT", "mailto:ops@habla.ai")

	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, "America/Sao_Paulo", p.DefaultTimezone)
	assert.Equal(t, "test-key", p.EvaluatorAPIKey)
	assert.Equal(t, "mailto:ops@habla.ai", p.VAPIDSubject)
	assert.Equal(t, "gemini", p.EvaluatorProvider)
}

func TestFromEnvDefaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()
	assert.Equal(t, "America/Asuncion", p.DefaultTimezone)
}
