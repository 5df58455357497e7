package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8888", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, NotifyModeSMTP, cfg.NotifyMode)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
	assert.True(t, cfg.RateLimitEnabled)
}

func TestParse_ReplicaList(t *testing.T) {
	t.Setenv("DATABASE_REPLICA_DSNS", "host=r1,host=r2")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"host=r1", "host=r2"}, cfg.DatabaseReplicaDSNs)
}

func TestParse_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Parse()
	require.Error(t, err)
}

func TestParse_SqliteNeedsDSN(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")

	_, err := Parse()
	require.Error(t, err)

	t.Setenv("DATABASE_DSN", "alms.db")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "alms.db", cfg.GetDSN())
}

func TestParse_RejectsUnknownNotifyMode(t *testing.T) {
	t.Setenv("NOTIFY_MODE", "pigeon")

	_, err := Parse()
	require.Error(t, err)
}

func TestValidateNotifier(t *testing.T) {
	cfg := Config{SMTPPort: 587}
	err := cfg.ValidateNotifier()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")
	assert.Contains(t, err.Error(), "LEAVE_NOTIFY_RECIPIENT")

	cfg = Config{
		SMTPHost:             "smtp.example.com",
		SMTPPort:             465,
		SMTPUsername:         "hr-bot",
		SMTPPassword:         "secret",
		SMTPSender:           "HR Bot <hr-bot@example.com>",
		LeaveNotifyRecipient: "admin@example.com",
	}
	assert.NoError(t, cfg.ValidateNotifier())
}

func TestGetDSN_BuildsPostgresParts(t *testing.T) {
	cfg := Config{
		PostgreSQLHost:     "db",
		PostgreSQLPort:     "5432",
		PostgreSQLUser:     "u",
		PostgreSQLPassword: "p",
		PostgreSQLDatabase: "alms",
		PostgreSQLSSLMode:  "disable",
		PostgreSQLSchema:   "public",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=alms sslmode=disable search_path=public", cfg.GetDSN())
}

func TestNeedsRedis(t *testing.T) {
	assert.False(t, (&Config{NotifyMode: NotifyModeSMTP}).NeedsRedis())
	assert.True(t, (&Config{NotifyMode: NotifyModeQueue}).NeedsRedis())
	assert.True(t, (&Config{RateLimitEnabled: true, NotifyMode: NotifyModeSMTP}).NeedsRedis())
}
