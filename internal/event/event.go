// Package event is a typed publish/subscribe bus. Subscribers register for a
// concrete event type and receive only values of that type.
package event

import (
	"reflect"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// InstanceSelected is published when the selected instance changes.
type InstanceSelected struct {
	Path string
}

// RuntimeEdited is published when an instance's runtime composition changes.
type RuntimeEdited struct {
	Path    string
	Runtime domain.RuntimeVersions
}

// JavaChanged is published when an instance's java or the java list changes.
type JavaChanged struct {
	Path string
}

// LocalVersionsChanged is published after the installed version list is
// rescanned.
type LocalVersionsChanged struct {
	Versions []domain.LocalVersion
}

// ModsChanged is published when the mod list of an instance changes.
type ModsChanged struct {
	Path string
}

// ResourcePacksChanged is published when the pack list of an instance changes.
type ResourcePacksChanged struct {
	Path string
}

// AccountChanged is published when the selected account or its session
// changes.
type AccountChanged struct {
	AccountID string
}

// ServerStatusRefreshed is published after a server ping.
type ServerStatusRefreshed struct {
	Status domain.ServerStatus
}

// IssuesUpdated is published whenever the issue report changes.
type IssuesUpdated struct {
	Report domain.IssueReport
}

// Bus dispatches events synchronously to subscribers in registration order.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[reflect.Type][]subscription
}

type subscription struct {
	id int
	fn func(any)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type][]subscription)}
}

// Subscribe registers fn for events of type E. The returned func removes it.
func Subscribe[E any](b *Bus, fn func(E)) func() {
	t := reflect.TypeOf((*E)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: func(v any) { fn(v.(E)) }})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, s := range list {
			if s.id == id {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every subscriber of its type.
func Publish[E any](b *Bus, e E) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	b.mu.RLock()
	list := append([]subscription(nil), b.subs[t]...)
	b.mu.RUnlock()
	for _, s := range list {
		s.fn(e)
	}
}
