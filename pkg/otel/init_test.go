package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimScheme(t *testing.T) {
	assert.Equal(t, "collector:4317", trimScheme("http://collector:4317"))
	assert.Equal(t, "collector:4317", trimScheme("https://collector:4317"))
	assert.Equal(t, "collector:4317", trimScheme("collector:4317"))
}

func TestNormalize(t *testing.T) {
	cfg := Config{Environment: "production", SampleRatio: 0, OTLPEndpoint: "http://c:4317"}.normalize()
	assert.Equal(t, 0.1, cfg.SampleRatio)
	assert.Equal(t, "c:4317", cfg.OTLPEndpoint)

	cfg = Config{SampleRatio: 0.5}.normalize()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1.0, cfg.SampleRatio)
}
