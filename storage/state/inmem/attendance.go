package inmemstate

import (
	"sync"

	"github.com/kymoh/darasa/core/attendance"
)

// AttendanceBook is the two-level attendance index. Writes replace the maps
// structurally at both levels: a snapshot taken before a write keeps its
// referential identity, so subscribers comparing references see every change.
type AttendanceBook struct {
	mu       sync.RWMutex
	book     attendance.Book
	watchers []chan struct{}
}

func (b *AttendanceBook) Load(book attendance.Book) {
	cloned := book.Clone()
	b.mu.Lock()
	b.book = cloned
	b.mu.Unlock()
	b.notify()
}

func (b *AttendanceBook) Record(classID, date string) attendance.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.book.Record(classID, date)
}

func (b *AttendanceBook) ReplaceDate(classID, date string, rec attendance.Record) {
	b.mu.Lock()
	next := make(attendance.Book, len(b.book)+1)
	for cid, dates := range b.book {
		next[cid] = dates
	}
	dates := make(map[string]attendance.Record, len(next[classID])+1)
	for d, r := range next[classID] {
		dates[d] = r
	}
	dates[date] = rec.Clone()
	next[classID] = dates
	b.book = next
	b.mu.Unlock()
	b.notify()
}

func (b *AttendanceBook) Snapshot() attendance.Book {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.book.Clone()
}

func (b *AttendanceBook) Clear() {
	b.mu.Lock()
	b.book = attendance.Book{}
	b.mu.Unlock()
	b.notify()
}

func (b *AttendanceBook) Watch() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	b.watchers = append(b.watchers, ch)
	return ch
}

func (b *AttendanceBook) notify() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
