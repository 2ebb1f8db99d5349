package engine

import "context"

// mutation is the reusable optimistic-update primitive: apply the local
// change immediately, attempt to persist it, and restore the pre-mutation
// snapshot when persistence fails. The closures own the snapshot.
type mutation struct {
	apply   func()
	persist func(ctx context.Context) error
	restore func()
}

func (eng *Engine) runOptimistic(ctx context.Context, m mutation) error {
	m.apply()
	if err := m.persist(ctx); err != nil {
		m.restore()
		return err
	}
	return nil
}
