package inmemstate

import (
	"sync"

	"github.com/kymoh/darasa/core/chat"
)

// ChatLog is the append-only message store. Remove exists solely for rolling
// back an unconfirmed optimistic append; confirmed messages are never
// reordered or deleted.
type ChatLog struct {
	mu       sync.RWMutex
	msgs     []chat.Message
	watchers []chan struct{}
}

func (l *ChatLog) Load(msgs []chat.Message) {
	cp := make([]chat.Message, len(msgs))
	copy(cp, msgs)
	l.mu.Lock()
	l.msgs = cp
	l.mu.Unlock()
	l.notify()
}

func (l *ChatLog) Append(msg chat.Message) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
	l.notify()
}

func (l *ChatLog) Remove(id string) {
	l.mu.Lock()
	for i, m := range l.msgs {
		if m.ID == id {
			l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	l.notify()
}

// Channel returns the messages of one (channel, classId) partition in
// append order.
func (l *ChatLog) Channel(channel, classID string) []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chat.Message, 0, len(l.msgs))
	for _, m := range l.msgs {
		if m.Channel == channel && m.ClassID == classID {
			out = append(out, m)
		}
	}
	return out
}

func (l *ChatLog) All() []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chat.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *ChatLog) Clear() {
	l.mu.Lock()
	l.msgs = nil
	l.mu.Unlock()
	l.notify()
}

func (l *ChatLog) Watch() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{}, 1)
	l.watchers = append(l.watchers, ch)
	return ch
}

func (l *ChatLog) notify() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
