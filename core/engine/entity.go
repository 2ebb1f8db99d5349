package engine

import (
	"context"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/catalog"
)

// saveEntity is the single pessimistic write path for all entity kinds: an
// absent id means "create" (the server assigns one), a present id means
// "update". The mirror is only touched once the server has confirmed, and
// only if no younger write for the same (kind, id) has committed first.
func saveEntity[T catalog.Entity](ctx context.Context, eng *Engine, col Collection[T], data T) (T, error) {
	var zero T
	if err := eng.requireAuth(); err != nil {
		return zero, err
	}
	if err := core.CheckStruct(data); err != nil {
		return zero, err
	}

	kind, id := data.EntityKind(), data.EntityID()
	var token uint64
	if id != "" {
		token = eng.fences.issue(fenceKey{kind, id})
	}

	var saved T
	if err := eng.gw.SaveEntity(ctx, kind, id, data, &saved); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		// The response arrived after cancellation: discard it.
		return zero, err
	}
	if id != "" && !eng.fences.commit(fenceKey{kind, id}, token) {
		eng.log.Debug("discarding stale save response", kind.String(), id)
		return saved, nil
	}
	col.Upsert(saved)
	return saved, nil
}

func (eng *Engine) SaveClass(ctx context.Context, c catalog.Class) (catalog.Class, error) {
	return saveEntity(ctx, eng, eng.mirror.Classes, c)
}

func (eng *Engine) SaveFaculty(ctx context.Context, f catalog.Faculty) (catalog.Faculty, error) {
	return saveEntity(ctx, eng, eng.mirror.Faculty, f)
}

func (eng *Engine) SaveSubject(ctx context.Context, s catalog.Subject) (catalog.Subject, error) {
	return saveEntity(ctx, eng, eng.mirror.Subjects, s)
}

func (eng *Engine) SaveRoom(ctx context.Context, r catalog.Room) (catalog.Room, error) {
	return saveEntity(ctx, eng, eng.mirror.Rooms, r)
}

func (eng *Engine) SaveStudent(ctx context.Context, s catalog.Student) (catalog.Student, error) {
	return saveEntity(ctx, eng, eng.mirror.Students, s)
}

func (eng *Engine) SaveInstitution(ctx context.Context, i catalog.Institution) (catalog.Institution, error) {
	return saveEntity(ctx, eng, eng.mirror.Institutions, i)
}

func (eng *Engine) SaveUser(ctx context.Context, u catalog.User) (catalog.User, error) {
	return saveEntity(ctx, eng, eng.mirror.Users, u)
}

// DeleteEntity removes the record remotely then locally. The server treats a
// missing id as already deleted, so the call is idempotent end to end.
func (eng *Engine) DeleteEntity(ctx context.Context, kind catalog.Kind, id string) error {
	if err := eng.requireAuth(); err != nil {
		return err
	}
	token := eng.fences.issue(fenceKey{kind, id})
	if err := eng.gw.DeleteEntity(ctx, kind, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !eng.fences.commit(fenceKey{kind, id}, token) {
		return nil
	}
	return eng.mirror.remove(kind, id)
}
