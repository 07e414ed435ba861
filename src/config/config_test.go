package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://bank.local:8080/")
	t.Setenv("CONTEXT_PATH", "banking/")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")
	t.Setenv("MAX_PAGE_SIZE", "5")
	t.Setenv("WIDGET_TTL", "2m")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	LoadConfig()

	assert.Equal(t, "http://bank.local:8080", Cfg.UpstreamBaseURL)
	assert.Equal(t, "/banking", Cfg.ContextPath)
	assert.Equal(t, 25, Cfg.DefaultPageSize)
	assert.Equal(t, 25, Cfg.MaxPageSize, "max page size is raised to the default")
	assert.Equal(t, 2*time.Minute, Cfg.WidgetTTL)
	assert.Equal(t, time.Duration(0), Cfg.UpstreamTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, Cfg.AllowedOrigins)
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

func TestNormalizeContextPath(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"/":         "",
		"banking":   "/banking",
		"/banking/": "/banking",
		" /jaba ":   "/jaba",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeContextPath(in), "input %q", in)
	}
}
