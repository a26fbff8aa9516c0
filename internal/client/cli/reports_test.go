package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fbellini/daybook-server/internal/report"
)

func TestNewReportBody(t *testing.T) {
	now := time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)

	t.Run("keeps the entered text", func(t *testing.T) {
		body := newReportBody("Report del 12/03/2024\ncorpo", now)
		assert.Equal(t, "Report del 12/03/2024\ncorpo", body)
	})

	t.Run("empty entry falls back to today's template", func(t *testing.T) {
		body := newReportBody("", now)
		assert.Equal(t, report.NewBodyTemplate(now), body)
		assert.True(t, strings.HasPrefix(body, "Report del 12/03/2024"))
		assert.Contains(t, body, "Riassunto visita:")
	})

	t.Run("whitespace-only entry falls back too", func(t *testing.T) {
		body := newReportBody("  \n\t", now)
		assert.Equal(t, report.NewBodyTemplate(now), body)
	})
}
