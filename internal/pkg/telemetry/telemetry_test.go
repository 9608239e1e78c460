package telemetry

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSetup_WithoutEndpointIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), config.TelemetryConfig{ServiceName: "timeclock-api"})
	assert.NoError(t, shutdown(context.Background()))
}
