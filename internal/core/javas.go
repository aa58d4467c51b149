package core

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
)

// JavaStore records discovered java runtimes in the database.
type JavaStore struct {
	db         *db.DB
	bus        *event.Bus
	configured []string
	candidates func(configured []string) []string

	scan sync.Mutex
}

// NewJavaStore creates a store. A nil candidates func uses
// install.JavaCandidates.
func NewJavaStore(d *db.DB, bus *event.Bus, configured []string, candidates func([]string) []string) *JavaStore {
	if candidates == nil {
		candidates = install.JavaCandidates
	}
	return &JavaStore{db: d, bus: bus, configured: configured, candidates: candidates}
}

// Javas returns the recorded runtimes.
func (s *JavaStore) Javas(ctx context.Context) ([]domain.JavaRecord, error) {
	return s.db.GetJavas()
}

// Scan probes every candidate executable, records the results and forgets
// recorded runtimes whose executable is gone.
func (s *JavaStore) Scan(ctx context.Context) ([]domain.JavaRecord, error) {
	s.scan.Lock()
	defer s.scan.Unlock()
	log := ctxlog.FromContext(ctx)

	candidates := s.candidates(s.configured)
	found, err := install.DiscoverJavas(ctx, candidates)
	if err != nil {
		return nil, err
	}
	for _, rec := range found {
		if err := s.db.SaveJava(rec); err != nil {
			return nil, err
		}
		log.Debug("java probed", "path", rec.Path, "version", rec.Version, "valid", rec.Valid)
	}

	known, err := s.db.GetJavas()
	if err != nil {
		return nil, err
	}
	for _, rec := range known {
		if slices.Contains(candidates, rec.Path) {
			continue
		}
		if _, err := os.Stat(rec.Path); err == nil {
			continue
		}
		if err := s.db.DeleteJava(rec.Path); err != nil {
			return nil, err
		}
	}

	javas, err := s.db.GetJavas()
	if err != nil {
		return nil, err
	}
	log.Info("java scan finished", "candidates", len(candidates), "recorded", len(javas))
	if s.bus != nil {
		event.Publish(s.bus, event.JavaChanged{})
	}
	return javas, nil
}

// Default returns the newest valid recorded runtime.
func (s *JavaStore) Default(ctx context.Context) (domain.JavaRecord, bool, error) {
	javas, err := s.Javas(ctx)
	if err != nil {
		return domain.JavaRecord{}, false, err
	}
	rec, ok := diagnose.DefaultJava(javas)
	return rec, ok, nil
}

// DefaultPath returns the default runtime's executable, scanning once when
// nothing valid is recorded yet.
func (s *JavaStore) DefaultPath(ctx context.Context) (string, error) {
	rec, ok, err := s.Default(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return rec.Path, nil
	}
	javas, err := s.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("scanning javas: %w", err)
	}
	if rec, ok := diagnose.DefaultJava(javas); ok {
		return rec.Path, nil
	}
	return "", domain.ErrJavaNotFound
}
