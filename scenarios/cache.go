package scenarios

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/actor"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
)

// CacheCoherence runs spec.md §8 scenario 4: three clients request
// Shared/Exclusive access to a line from a host; at most one client may
// hold Exclusive, and no client may hold Shared while another holds
// Exclusive. Intended to be run under strategy.DFS to exhaustively
// confirm the safety property.
func CacheCoherence(strat strategy.Strategy, seed int64) error {
	rt := runtime.New(strat, seed, runtime.WithMaxStepsPerIter(2000))
	const n = 3

	clients := make([]*actor.Actor, n)
	states := make([]string, n) // mirrors each client's line state, for the host's bookkeeping
	var host *actor.Actor
	host = actor.New("host", "serving", actor.PolicyThrowException)

	grantedExclusive := -1
	sharedCount := 0

	violation := func() string {
		for i := 0; i < n; i++ {
			if states[i] != "exclusive" {
				continue
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if states[j] == "exclusive" || states[j] == "shared" {
					return fmt.Sprintf("cache-coherence: client %d Exclusive while client %d is %s", i, j, states[j])
				}
			}
		}
		return ""
	}

	host.State("serving", map[string]actor.Handler{
		"request_shared": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			id := e.Value.(int)
			if grantedExclusive != -1 && grantedExclusive != id {
				actor.Send(ictx, clients[id], actor.Event{Kind: "denied"})
				return actor.Continue()
			}
			sharedCount++
			actor.Send(ictx, clients[id], actor.Event{Kind: "granted_shared"})
			return actor.Continue()
		},
		"request_exclusive": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			id := e.Value.(int)
			if sharedCount > 0 || (grantedExclusive != -1 && grantedExclusive != id) {
				actor.Send(ictx, clients[id], actor.Event{Kind: "denied"})
				return actor.Continue()
			}
			grantedExclusive = id
			actor.Send(ictx, clients[id], actor.Event{Kind: "granted_exclusive"})
			return actor.Continue()
		},
		"release": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			id := e.Value.(int)
			if grantedExclusive == id {
				grantedExclusive = -1
			} else if sharedCount > 0 {
				sharedCount--
			}
			return actor.Continue()
		},
		"stop": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
			return actor.Halt()
		},
	}, nil, nil)

	for i := 0; i < n; i++ {
		i := i
		c := actor.New(fmt.Sprintf("client-%d", i), "idle", actor.PolicyThrowException)
		c.State("idle", map[string]actor.Handler{
			"start": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
				if i%2 == 0 {
					actor.Send(ictx, host, actor.Event{Kind: "request_exclusive", Value: i})
				} else {
					actor.Send(ictx, host, actor.Event{Kind: "request_shared", Value: i})
				}
				return actor.Goto("waiting")
			},
		}, nil, nil)
		c.State("waiting", map[string]actor.Handler{
			"granted_shared": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
				states[i] = "shared"
				return actor.Goto("holding")
			},
			"granted_exclusive": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
				states[i] = "exclusive"
				return actor.Goto("holding")
			},
			"denied": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
				return actor.Halt()
			},
		}, []string{"release_now"}, nil)
		c.State("holding", map[string]actor.Handler{
			"release_now": func(ictx *runtime.Context, a *actor.Actor, e actor.Event) actor.Continuation {
				actor.Send(ictx, host, actor.Event{Kind: "release", Value: i})
				states[i] = ""
				return actor.Halt()
			},
		}, nil, nil)
		clients[i] = c
	}

	return rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("host", "", func(inner *runtime.Context) {
			actor.Run(inner, host)
		})
		for i := 0; i < n; i++ {
			i := i
			ctx.Spawn(fmt.Sprintf("client-%d", i), "", func(inner *runtime.Context) {
				actor.Send(inner, clients[i], actor.Event{Kind: "start"})
				actor.Send(inner, clients[i], actor.Event{Kind: "release_now"})
				actor.Run(inner, clients[i])
			})
		}
		for {
			ctx.Yield()
			if msg := violation(); msg != "" {
				ctx.Assert(false, msg)
				return
			}
			allDone := true
			for i := 0; i < n; i++ {
				if !clients[i].Halted() {
					allDone = false
				}
			}
			if allDone {
				actor.Send(ctx, host, actor.Event{Kind: "stop"})
				return
			}
		}
	})
}
