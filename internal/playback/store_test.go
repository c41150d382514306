package playback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CuelineHQ/cueline/internal/model"
)

func TestMemoryStateStoreRoundTrip(t *testing.T) {
	states := NewMemoryStateStore()
	ctx := context.Background()

	_, ok, err := states.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	saved := model.PlaybackState{
		Position: model.Position{Folder: 0, Item: 1},
		Elapsed:  5,
		Running:  true,
	}
	require.NoError(t, states.Save(ctx, 1, saved))

	loaded, ok, err := states.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, loaded)

	require.NoError(t, states.Clear(ctx, 1))
	_, ok, err = states.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// An unparsable snapshot is reported as absence, not as an error: the caller
// falls back to a fresh initial state.
func TestStateStoreToleratesCorruption(t *testing.T) {
	states := NewMemoryStateStore()
	ctx := context.Background()

	states.SeedRaw(1, []byte(`{"position": not json`))

	st, ok, err := states.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, model.PlaybackState{}, st)
}

func TestStateStoreRejectsNegativeElapsed(t *testing.T) {
	states := NewMemoryStateStore()

	states.SeedRaw(1, []byte(`{"position":{"folder":0,"item":0},"elapsed":-3,"running":false}`))

	_, ok, err := states.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeState(t *testing.T) {
	st, err := decodeState([]byte(`{"position":{"folder":1,"item":2},"elapsed":7,"running":true}`))
	require.NoError(t, err)
	assert.Equal(t, model.Position{Folder: 1, Item: 2}, st.Position)
	assert.Equal(t, 7, st.Elapsed)
	assert.True(t, st.Running)

	_, err = decodeState([]byte(`garbage`))
	assert.Error(t, err)
}

func TestStateKeyIsNamespacedByRundown(t *testing.T) {
	assert.Equal(t, "rundown:7:playback", stateKey(7))
	assert.NotEqual(t, stateKey(1), stateKey(2))
}
