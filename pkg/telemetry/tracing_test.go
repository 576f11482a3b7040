package telemetry

import (
	"context"
	"testing"

	"anoa.com/courseplatform/internal/config"
	"anoa.com/courseplatform/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitNoneIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.Config{OtelExporter: "none"}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), &config.Config{OtelExporter: "zipkin"}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}

func TestInitStdout(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.Config{
		OtelExporter:    "stdout",
		OtelServiceName: "course-platform-test",
		AppEnv:          "test",
	}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
