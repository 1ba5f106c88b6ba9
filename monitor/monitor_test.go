package monitor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arbiterlabs/arbiter/monitor"
)

func TestMonitorReportsHotAtEnd(t *testing.T) {
	m := monitor.New("request-completion", "idle")
	m.State("idle", monitor.Cold, map[string]monitor.Transition{
		"request": func(event any) (string, bool) { return "waiting", true },
	})
	m.State("waiting", monitor.Hot, map[string]monitor.Transition{
		"response": func(event any) (string, bool) { return "idle", true },
	})

	m.Observe("request", nil)
	assert.True(t, m.Hot())
	assert.Equal(t, "waiting", m.CurrentState())

	m.Observe("response", nil)
	assert.False(t, m.Hot())
}

func TestTickFlagsSustainedHotState(t *testing.T) {
	m := monitor.New("never-responds", "idle")
	m.State("idle", monitor.Cold, map[string]monitor.Transition{
		"request": func(event any) (string, bool) { return "waiting", true },
	})
	m.State("waiting", monitor.Hot, nil)

	m.Observe("request", nil)
	for i := 0; i < 2; i++ {
		assert.False(t, m.Tick(3))
	}
	assert.True(t, m.Tick(3))
}
