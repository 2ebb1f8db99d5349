package engine

// LifecycleState is the public session lifecycle observed by views: a bulk
// load (or reset) drives loading -> ready | failed.
type LifecycleState int

const (
	StateIdle LifecycleState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LifecycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (eng *Engine) State() LifecycleState {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.state
}

// WatchState returns a channel receiving every lifecycle transition. Slow
// consumers lose intermediate states, never the channel.
func (eng *Engine) WatchState() <-chan LifecycleState {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	ch := make(chan LifecycleState, 8)
	eng.stateWatchers = append(eng.stateWatchers, ch)
	return ch
}

func (eng *Engine) setState(s LifecycleState) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.state == s {
		return
	}
	eng.state = s
	for _, ch := range eng.stateWatchers {
		select {
		case ch <- s:
		default:
		}
	}
}
