package version

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGet(t *testing.T) {
	saved := buildVersion
	defer func() { buildVersion = saved }()

	buildVersion = ""
	require.Equal(t, "N/A", Get().Version)

	buildVersion = "v1.2.0"
	require.Equal(t, "v1.2.0", Get().Version)
}

func TestLogBuildInfo(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	LogBuildInfo(zap.New(core), "collector")

	entries := logs.FilterMessage("Build info").All()
	require.Len(t, entries, 1)
	require.Equal(t, "collector", entries[0].ContextMap()["component"])
}
