package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/chat"
)

// SendMessage runs the optimistic chat flow: gate check, immediate local
// append of the author's message, then the server ask. On success the server
// reply is appended as well. On a non-fatal failure the optimistic entry is
// rolled back and replaced by a synthetic system-authored error message, so
// the caller never sees an unhandled rejection; auth failures propagate.
//
// When the window is closed nothing reaches the store or the network and the
// caller keeps the draft.
func (eng *Engine) SendMessage(ctx context.Context, channel, classID, text string) (chat.Message, error) {
	if err := eng.requireAuth(); err != nil {
		return chat.Message{}, err
	}
	if !chat.IsOpen(eng.mirror.Constraints.Get(), eng.now()) {
		return chat.Message{}, chat.ErrWindowClosed
	}

	usr, _ := eng.sess.User()
	optimistic := chat.Message{
		ID:        "local-" + uuid.New().String(),
		Channel:   channel,
		ClassID:   classID,
		Author:    usr.Username,
		Role:      string(usr.Role),
		Text:      text,
		Timestamp: eng.now(),
	}

	var reply chat.Message
	err := eng.runOptimistic(ctx, mutation{
		apply: func() { eng.mirror.Chat.Append(optimistic) },
		persist: func(ctx context.Context) error {
			m, err := eng.gw.AskChat(ctx, text, classID)
			if err == nil {
				reply = m
			}
			return err
		},
		restore: func() { eng.mirror.Chat.Remove(optimistic.ID) },
	})
	if err != nil {
		if core.IsAuthError(err) {
			return chat.Message{}, err
		}
		eng.log.Warn("chat send failed", err)
		system := chat.Message{
			ID:        "local-" + uuid.New().String(),
			Channel:   channel,
			ClassID:   classID,
			Author:    "system",
			Role:      chat.RoleSystem,
			Text:      "message could not be delivered: " + err.Error(),
			Timestamp: eng.now(),
		}
		eng.mirror.Chat.Append(system)
		return system, nil
	}

	if reply.ID == "" {
		reply.ID = "local-" + uuid.New().String()
	}
	reply.Channel = channel
	reply.ClassID = classID
	if reply.Timestamp.IsZero() {
		reply.Timestamp = eng.now()
	}
	eng.mirror.Chat.Append(reply)
	return reply, nil
}
