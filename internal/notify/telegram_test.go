package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTelegramEmptyToken(t *testing.T) {
	tg, err := NewTelegram("", zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, tg)
}
