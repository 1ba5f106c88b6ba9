package actor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/actor"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
)

func TestPingPongHandoffHaltsBothActors(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(21), 21)
	const rounds = 5
	var serverSeen int

	server := actor.New("server", "waiting", actor.PolicyThrowException)
	client := actor.New("client", "waiting", actor.PolicyThrowException)

	server.State("waiting", map[string]actor.Handler{
		"ping": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			serverSeen++
			actor.Send(ictx, client, actor.Event{Kind: "pong"})
			if serverSeen >= rounds {
				return actor.Halt()
			}
			return actor.Continue()
		},
	}, nil, nil)

	sent := 0
	client.State("waiting", map[string]actor.Handler{
		"pong": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			sent++
			if sent >= rounds {
				return actor.Halt()
			}
			actor.Send(ictx, server, actor.Event{Kind: "ping"})
			return actor.Continue()
		},
	}, nil, nil)

	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("server", "", func(inner *runtime.Context) {
			actor.Run(inner, server)
		})
		ctx.Spawn("client", "", func(inner *runtime.Context) {
			actor.Send(inner, server, actor.Event{Kind: "ping"})
			actor.Run(inner, client)
		})
	})

	require.NoError(t, err)
	assert.Equal(t, rounds, serverSeen)
}

func TestDeferKeepsEventUntilStateAllows(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(22), 22)
	var handledInReady bool

	m := actor.New("machine", "busy", actor.PolicyThrowException)
	m.State("busy", map[string]actor.Handler{
		"go_ready": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			return actor.Goto("ready")
		},
	}, []string{"work"}, nil)
	m.State("ready", map[string]actor.Handler{
		"work": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			handledInReady = true
			return actor.Halt()
		},
	}, nil, nil)

	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("machine", "", func(inner *runtime.Context) {
			actor.Send(inner, m, actor.Event{Kind: "work"})
			actor.Send(inner, m, actor.Event{Kind: "go_ready"})
			actor.Run(inner, m)
		})
	})

	require.NoError(t, err)
	assert.True(t, handledInReady)
}
