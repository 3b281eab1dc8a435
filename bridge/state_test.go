package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		want  string
		state State
	}{
		{"unstarted", StateUnstarted},
		{"starting", StateStarting},
		{"ready", StateReady},
		{"stopping", StateStopping},
		{"stopped", StateStopped},
		{"failed", StateFailed},
		{"unknown", State(99)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestStateMachine_HappyPath(t *testing.T) {
	var m stateMachine
	assert.Equal(t, StateUnstarted, m.Current())

	for _, to := range []State{StateStarting, StateReady, StateStopping, StateStopped, StateStarting} {
		require.NoError(t, m.transition(to), "-> %s", to)
		assert.Equal(t, to, m.Current())
	}
}

func TestStateMachine_UnexpectedExitFromReady(t *testing.T) {
	m := stateMachine{state: StateReady}
	require.NoError(t, m.transition(StateStopped))
	assert.True(t, m.Current().canStart())
}

func TestStateMachine_FailedIsTerminal(t *testing.T) {
	m := stateMachine{state: StateStarting}
	require.NoError(t, m.transition(StateFailed))

	for _, to := range []State{StateUnstarted, StateStarting, StateReady, StateStopping, StateStopped} {
		err := m.transition(to)
		assert.ErrorIs(t, err, ErrInvalidState)
	}
	assert.Equal(t, StateFailed, m.Current())
	assert.False(t, m.Current().canStart())
}

func TestStateMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{StateUnstarted, StateReady},
		{StateUnstarted, StateStopped},
		{StateReady, StateStarting},
		{StateReady, StateFailed},
		{StateStopping, StateReady},
		{StateStopped, StateReady},
	}
	for _, tt := range tests {
		m := stateMachine{state: tt.from}
		err := m.transition(tt.to)
		require.Error(t, err, "%s -> %s", tt.from, tt.to)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Contains(t, err.Error(), tt.from.String()+" -> "+tt.to.String())
		assert.Equal(t, tt.from, m.Current())
	}
}

func TestState_CanStart(t *testing.T) {
	assert.True(t, StateUnstarted.canStart())
	assert.True(t, StateStopped.canStart())
	assert.False(t, StateStarting.canStart())
	assert.False(t, StateReady.canStart())
	assert.False(t, StateStopping.canStart())
	assert.False(t, StateFailed.canStart())
}
