package scenarios

import (
	"github.com/arbiterlabs/arbiter/actor"
	"github.com/arbiterlabs/arbiter/monitor"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
)

// PingPongTermination runs spec.md §8 scenario 3: client and server
// exchange 5 ping/pongs, then the client halts. A liveness monitor
// tracks the "client eventually halts" property (I6), exercising the
// hot/cold path end to end rather than only relying on the iteration
// itself terminating.
func PingPongTermination(strat strategy.Strategy, seed int64) error {
	rt := runtime.New(strat, seed, runtime.WithMaxStepsPerIter(1000))
	const rounds = 5

	m := monitor.New("client-halts", "exchanging")
	m.State("exchanging", monitor.Hot, map[string]monitor.Transition{
		"client-halted": func(any) (string, bool) { return "done", true },
	})
	m.State("done", monitor.Cold, nil)
	rt.RegisterMonitor(m)

	server := actor.New("server", "running", actor.PolicyThrowException)
	client := actor.New("client", "running", actor.PolicyThrowException)

	pings := 0
	server.State("running", map[string]actor.Handler{
		"ping": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			pings++
			actor.Send(ictx, client, actor.Event{Kind: "pong"})
			if pings >= rounds {
				return actor.Halt()
			}
			return actor.Continue()
		},
	}, nil, nil)

	pongs := 0
	client.State("running", map[string]actor.Handler{
		"pong": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			pongs++
			if pongs >= rounds {
				m.Observe("client-halted", nil)
				return actor.Halt()
			}
			actor.Send(ictx, server, actor.Event{Kind: "ping"})
			return actor.Continue()
		},
	}, nil, nil)

	return rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("server", "", func(inner *runtime.Context) {
			actor.Run(inner, server)
		})
		ctx.Spawn("client", "", func(inner *runtime.Context) {
			actor.Send(inner, server, actor.Event{Kind: "ping"})
			actor.Run(inner, client)
		})
	})
}
