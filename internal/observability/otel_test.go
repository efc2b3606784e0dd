package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"x-api-key": "abc", "team": "media"}, parseHeaders(" x-api-key=abc, team = media ,bogus,=v,k="))
	assert.Nil(t, parseHeaders(""))
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
