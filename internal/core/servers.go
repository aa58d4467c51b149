package core

import (
	"context"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
)

// ServerStore records server ping results.
type ServerStore struct {
	db      *db.DB
	bus     *event.Bus
	timeout time.Duration
}

// NewServerStore creates a store whose pings time out after 5 seconds.
func NewServerStore(d *db.DB, bus *event.Bus) *ServerStore {
	return &ServerStore{db: d, bus: bus, timeout: 5 * time.Second}
}

// ServerStatus returns the last recorded status of address.
func (s *ServerStore) ServerStatus(ctx context.Context, address string) (domain.ServerStatus, bool, error) {
	return s.db.GetServerStatus(address)
}

// Refresh pings addr, records the result and publishes it.
func (s *ServerStore) Refresh(ctx context.Context, addr domain.ServerAddress) (domain.ServerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, err := Ping(ctx, addr)
	if err != nil {
		return status, err
	}
	if err := s.db.SaveServerStatus(status); err != nil {
		return status, err
	}
	ctxlog.FromContext(ctx).Debug("server pinged", "address", status.Address, "version", status.Version, "mods", len(status.Mods))
	if s.bus != nil {
		event.Publish(s.bus, event.ServerStatusRefreshed{Status: status})
	}
	return status, nil
}
