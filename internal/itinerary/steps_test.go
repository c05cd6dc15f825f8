package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepForPath(t *testing.T) {
	tests := []struct {
		path string
		want Step
		ok   bool
	}{
		{"/", StepEvent, true},
		{"", StepEvent, true},
		{"/events", StepEvent, true},
		{"/accommodation", StepAccommodation, true},
		{"/accommodation/", StepAccommodation, true},
		{"/transportation", StepTransportation, true},
		{"/results", StepSummary, true},
		{"/nowhere", 0, false},
	}
	for _, tt := range tests {
		got, ok := StepForPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestProgress(t *testing.T) {
	state := Progress("/transportation")

	require.Equal(t, StepTransportation, state.Current)
	require.Len(t, state.Steps, 4)

	assert.True(t, state.Steps[0].Completed)
	assert.True(t, state.Steps[1].Completed)
	assert.False(t, state.Steps[2].Completed)
	assert.True(t, state.Steps[2].Current)
	assert.True(t, state.Steps[2].Clickable)
	assert.False(t, state.Steps[3].Clickable)

	unknown := Progress("/unknown")
	assert.Equal(t, Step(0), unknown.Current)
	for _, s := range unknown.Steps {
		assert.False(t, s.Completed)
		assert.False(t, s.Clickable)
	}
}

func TestNavigateBackwardDropsLaterFields(t *testing.T) {
	sel := fullSelection()

	addr, ok, err := Navigate(StepSummary, StepAccommodation, sel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/accommodation", addr.Path())
	assert.Equal(t, sel.EventID, addr.Query.Get(KeyEventID))
	assert.Empty(t, addr.Query.Get(KeyTransport))
	assert.Empty(t, addr.Query.Get(KeyLodging))

	addr, ok, err = Navigate(StepSummary, StepEvent, sel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/", addr.String())
}

func TestNavigateForwardIsNoOp(t *testing.T) {
	_, ok, err := Navigate(StepAccommodation, StepSummary, fullSelection())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Navigate(StepAccommodation, Step(9), fullSelection())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvance(t *testing.T) {
	sel := fullSelection()

	addr, err := Advance(StepAccommodation, sel)
	require.NoError(t, err)
	assert.Equal(t, StepTransportation, addr.Step)
	assert.Equal(t, "hotel2", addr.Query.Get(KeyLodging))
	assert.Empty(t, addr.Query.Get(KeyOrigin))

	addr, err = Advance(StepSummary, sel)
	require.NoError(t, err)
	assert.Equal(t, StepSummary, addr.Step)
}
