package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/arbiterlabs/arbiter/metrics"
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/strategy"
)

// point implements spec.md §4.1's scheduling-point algorithm. It is
// called by the goroutine of the operation current is currently driving,
// with newStatus the status current transitions to before the decision
// (e.g. BlockedOnResource when about to wait on a lock, Enabled when
// merely yielding).
//
// point blocks until current is chosen again, unless it was chosen to
// continue immediately.
func (r *Runtime) point(current op.ID, kind op.PointKind, newStatus op.Status, action strategy.ActionInfo) {
	r.mu.Lock()
	entry := r.ops[current]
	entry.operation.SetStatus(newStatus)
	entry.operation.RecordPoint(kind, action.Target)
	entry.action = action
	r.mu.Unlock()

	chosen, err := r.schedule(kind)
	if err != nil {
		r.fail(err)
		// park forever; the iteration is over and egCtx is cancelled.
		<-r.egCtx.Done()
		return
	}
	if chosen == current {
		return
	}
	if chosen != 0 {
		r.wake(chosen)
	}
	r.park(current)
}

// completeOperation marks id Completed and, unless the whole iteration
// just drained out, hands off to whichever operation the strategy
// chooses next. cause is non-nil for a faulted completion.
func (r *Runtime) completeOperation(id op.ID, reason op.CompletionReason, cause error) {
	r.mu.Lock()
	entry := r.ops[id]
	if cause == nil && reason == op.CompletedNormally && entry.operation.CancelRequested() {
		// its own suspension point observed the cancel token and
		// returned early; report the reason it actually stopped for.
		reason = op.CompletedCancelled
	}
	entry.operation.SetStatus(op.Status{Kind: op.Completed, Reason: reason})
	r.mu.Unlock()

	if cause != nil {
		name := r.ops[id].operation.Name()
		r.fail(&UnhandledExceptionError{OperationName: name, Cause: cause})
		return
	}

	chosen, err := r.schedule(op.PointHalt)
	if err != nil {
		r.fail(err)
		return
	}
	if chosen == 0 {
		// no enabled operation remains: the iteration finished cleanly.
		r.once.Do(func() { close(r.doneCh) })
		return
	}
	r.wake(chosen)
}

// schedule computes the enabled set, advances the delay clock as
// necessary, asks the strategy which operation runs next, and records
// the decision. It returns op.ID(0) when no operation remains enabled
// and none is delayed (a clean end of iteration, distinct from
// deadlock, which is when operations remain but none can make
// progress).
func (r *Runtime) schedule(kind op.PointKind) (op.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		enabled, delayed, waiting, anyActive := r.partitionLocked()
		if len(enabled) > 0 {
			chosen, err := r.chooseLocked(kind, enabled)
			if err != nil {
				return 0, err
			}
			r.running = chosen
			r.stepCount++
			r.recorder.Append(kind, chosen, fmt.Sprintf("%d", chosen))
			r.opts.logger.Debug().
				Str("point", string(kind)).
				Uint64("operation", uint64(chosen)).
				Str("name", r.ops[chosen].operation.Name()).
				Int("step", r.stepCount).
				Log("scheduling point")
			if r.opts.maxStepsPerIter > 0 && r.stepCount > r.opts.maxStepsPerIter {
				return 0, ErrIterationBudgetExhausted
			}
			if err := r.checkMonitorsLocked(); err != nil {
				return 0, err
			}
			return chosen, nil
		}
		if !anyActive {
			if err := r.checkMonitorsAtEndLocked(); err != nil {
				return 0, err
			}
			return 0, nil
		}
		if len(delayed) == 0 {
			return 0, &DeadlockError{Waiting: waiting}
		}
		r.clockRounds++
		for _, id := range delayed {
			e := r.ops[id]
			rounds, _ := e.operation.IsDelayed()
			rounds--
			if rounds <= 0 {
				e.operation.SetStatus(op.Status{Kind: op.Enabled})
			} else {
				e.operation.SetStatus(op.Status{Kind: op.Delayed, RoundsLeft: rounds})
			}
		}
	}
}

// partitionLocked splits the operation set into the enabled ids
// (deterministically ordered by creation), delayed ids, and a
// human-readable snapshot of everything blocked — the last for
// DeadlockError reporting. Must be called with r.mu held.
func (r *Runtime) partitionLocked() (enabled, delayed []op.ID, waiting []WaitingOperation, anyActive bool) {
	for _, id := range r.order {
		e := r.ops[id]
		st := e.operation.Status()
		switch {
		case st.Kind == op.Completed:
			continue
		case st.Kind == op.Enabled:
			anyActive = true
			enabled = append(enabled, id)
		case st.Kind == op.Delayed:
			anyActive = true
			delayed = append(delayed, id)
		default:
			anyActive = true
			waiting = append(waiting, WaitingOperation{Name: e.operation.Name(), Status: st})
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled, delayed, waiting, anyActive
}

// chooseLocked asks the configured strategy which of enabled runs next,
// preferring the richer DependencyAwareChooser interface (used by DPOR)
// when the strategy implements it. Must be called with r.mu held.
func (r *Runtime) chooseLocked(kind op.PointKind, enabled []op.ID) (op.ID, error) {
	start := time.Now()
	defer func() {
		metrics.StrategyDecisionSeconds.WithLabelValues(r.strategy.Name()).Observe(time.Since(start).Seconds())
	}()
	if dac, ok := r.strategy.(strategy.DependencyAwareChooser); ok {
		actions := make(map[op.ID]strategy.ActionInfo, len(enabled))
		for _, id := range enabled {
			a := r.ops[id].action
			if a.Kind == "" {
				a.Kind = kind
			}
			actions[id] = a
		}
		return dac.ChooseNextWithActions(actions)
	}
	if tr, ok := r.strategy.(strategy.TouchRecorder); ok && r.running != 0 && (kind == op.PointSend || kind == op.PointInterlocked) {
		tr.RecordTouch(r.running)
	}
	return r.strategy.ChooseNext(kind, enabled)
}

// wake signals the given operation's goroutine to resume.
func (r *Runtime) wake(id op.ID) {
	r.mu.Lock()
	entry := r.ops[id]
	r.mu.Unlock()
	select {
	case entry.wake <- struct{}{}:
	default:
	}
}

// park blocks the calling goroutine (operation id) until it is next
// woken, or the iteration is torn down.
func (r *Runtime) park(id op.ID) {
	r.mu.Lock()
	entry := r.ops[id]
	r.mu.Unlock()
	select {
	case <-entry.wake:
	case <-r.egCtx.Done():
	}
}

// chooseBool resolves a ChooseBool decision through the configured
// strategy and records it as a Random-Bool trace point (spec.md §3.2),
// the same as any other scheduling decision, so strategy.Replay can
// reproduce it.
func (r *Runtime) chooseBool(id op.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.strategy.ChooseBool()
	if err != nil {
		return false, err
	}
	r.recorder.Append(op.PointRandomBool, id, strconv.FormatBool(v))
	r.opts.logger.Debug().
		Str("point", string(op.PointRandomBool)).
		Uint64("operation", uint64(id)).
		Bool("value", v).
		Log("scheduling point")
	return v, nil
}

// chooseInt resolves a ChooseInt decision through the configured
// strategy and records it as a Random-Int trace point.
func (r *Runtime) chooseInt(id op.ID, upper int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.strategy.ChooseInt(upper)
	if err != nil {
		return 0, err
	}
	r.recorder.Append(op.PointRandomInt, id, strconv.Itoa(v))
	r.opts.logger.Debug().
		Str("point", string(op.PointRandomInt)).
		Uint64("operation", uint64(id)).
		Int("value", v).
		Log("scheduling point")
	return v, nil
}

// requestCancel marks target's cancel token and, if it is currently
// blocked, makes it schedulable again — nothing else will ever unblock
// it otherwise. It does not itself wake anyone: the caller (Context.
// RequestCancel) immediately follows with its own scheduling point, so
// the hand-off still goes through schedule's normal choice-and-wake,
// preserving the one-operation-runs-at-a-time invariant.
func (r *Runtime) requestCancel(target op.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.ops[target]
	if !ok {
		return
	}
	entry.operation.RequestCancel()
	st := entry.operation.Status()
	blocked := st.Kind == op.BlockedOnOperation || st.Kind == op.BlockedOnResource || st.Kind == op.BlockedOnReceive
	if blocked {
		entry.operation.SetStatus(op.Status{Kind: op.Enabled})
	}
	r.opts.logger.Debug().
		Uint64("operation", uint64(target)).
		Bool("blocked", blocked).
		Log("cancel requested")
}

// cancelRequested reports whether id's cancel token has fired.
func (r *Runtime) cancelRequested(id op.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.ops[id]
	if !ok {
		return false
	}
	return entry.operation.CancelRequested()
}
