package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMuteActive(t *testing.T) {
	now := time.Now()

	permanent := Mute{MutedUntil: MutePermanent}
	require.True(t, permanent.Active(now))

	future := Mute{MutedUntil: now.Add(time.Minute).UnixMilli()}
	require.True(t, future.Active(now))

	expired := Mute{MutedUntil: now.Add(-time.Minute).UnixMilli()}
	require.False(t, expired.Active(now))
}
