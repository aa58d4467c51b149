package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
)

// AccountConfig is the YAML representation of an account
type AccountConfig struct {
	Username    string `yaml:"username"`
	UUID        string `yaml:"uuid,omitempty"`
	AuthService string `yaml:"auth_service"`
	AccessToken string `yaml:"access_token,omitempty"`
}

// AccountsFile is the top-level accounts.yaml structure
type AccountsFile struct {
	Accounts map[string]AccountConfig `yaml:"accounts"`
}

// AccountStore keeps accounts.yaml in memory. The selection is stored in
// config.yaml.
type AccountStore struct {
	dir string
	cfg *Config
	bus *event.Bus

	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// OpenAccounts loads accounts.yaml from configDir. bus may be nil.
func OpenAccounts(configDir string, cfg *Config, bus *event.Bus) (*AccountStore, error) {
	var file AccountsFile
	if err := readYAML(filepath.Join(configDir, "accounts.yaml"), &file); err != nil {
		return nil, err
	}
	s := &AccountStore{dir: configDir, cfg: cfg, bus: bus, accounts: make(map[string]domain.Account)}
	for id, ac := range file.Accounts {
		s.accounts[id] = domain.Account{
			ID:          id,
			Username:    ac.Username,
			UUID:        ac.UUID,
			AuthService: ac.AuthService,
			AccessToken: ac.AccessToken,
		}
	}
	return s, nil
}

// List returns every account ordered by id.
func (s *AccountStore) List() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SelectedAccount returns the selected account, if any.
func (s *AccountStore) SelectedAccount() (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[s.cfg.SelectedAccount]
	return a, ok
}

// Put adds or replaces an account. Replacing the selected account publishes
// AccountChanged.
func (s *AccountStore) Put(a domain.Account) error {
	if a.ID == "" {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidConfig)
	}
	if a.AuthService == "" {
		a.AuthService = domain.AuthServiceOffline
	}
	s.mu.Lock()
	s.accounts[a.ID] = a
	selected := s.cfg.SelectedAccount == a.ID
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if selected {
		publish(s.bus, event.AccountChanged{AccountID: a.ID})
	}
	return nil
}

// Select makes the account with id the selected one.
func (s *AccountStore) Select(id string) error {
	s.mu.Lock()
	if _, ok := s.accounts[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	s.cfg.SelectedAccount = id
	err := s.cfg.Save(s.dir)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	publish(s.bus, event.AccountChanged{AccountID: id})
	return nil
}

// Remove deletes an account. Removing the selected account clears the
// selection.
func (s *AccountStore) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.accounts[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	delete(s.accounts, id)
	selected := s.cfg.SelectedAccount == id
	if selected {
		s.cfg.SelectedAccount = ""
		if err := s.cfg.Save(s.dir); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if selected {
		publish(s.bus, event.AccountChanged{})
	}
	return nil
}

func (s *AccountStore) saveLocked() error {
	file := AccountsFile{Accounts: make(map[string]AccountConfig, len(s.accounts))}
	for id, a := range s.accounts {
		file.Accounts[id] = AccountConfig{
			Username:    a.Username,
			UUID:        a.UUID,
			AuthService: a.AuthService,
			AccessToken: a.AccessToken,
		}
	}
	return writeYAML(filepath.Join(s.dir, "accounts.yaml"), &file)
}
