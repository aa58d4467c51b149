package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
)

// InstanceConfig is the YAML representation of an instance
type InstanceConfig struct {
	Name          string                 `yaml:"name"`
	Runtime       domain.RuntimeVersions `yaml:"runtime"`
	Java          string                 `yaml:"java,omitempty"`
	ResourcePacks []string               `yaml:"resource_packs,omitempty"`
	Server        *domain.ServerAddress  `yaml:"server,omitempty"`
	MinMemory     int                    `yaml:"min_memory,omitempty"`
	MaxMemory     int                    `yaml:"max_memory,omitempty"`
}

// InstancesFile is the top-level instances.yaml structure
type InstancesFile struct {
	Instances map[string]InstanceConfig `yaml:"instances"`
}

// InstanceStore keeps instances.yaml in memory and publishes an event for
// every mutation. The selection is stored in config.yaml.
type InstanceStore struct {
	dir string
	cfg *Config
	bus *event.Bus

	mu        sync.RWMutex
	instances map[string]domain.Instance
}

// OpenInstances loads instances.yaml from configDir. bus may be nil.
func OpenInstances(configDir string, cfg *Config, bus *event.Bus) (*InstanceStore, error) {
	var file InstancesFile
	if err := readYAML(filepath.Join(configDir, "instances.yaml"), &file); err != nil {
		return nil, err
	}
	s := &InstanceStore{dir: configDir, cfg: cfg, bus: bus, instances: make(map[string]domain.Instance)}
	for path, ic := range file.Instances {
		s.instances[path] = domain.Instance{
			Path:          path,
			Name:          ic.Name,
			Runtime:       ic.Runtime,
			Java:          ic.Java,
			ResourcePacks: ic.ResourcePacks,
			Server:        ic.Server,
			MinMemory:     ic.MinMemory,
			MaxMemory:     ic.MaxMemory,
		}
	}
	return s, nil
}

// List returns every instance ordered by path.
func (s *InstanceStore) List() []domain.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Get returns the instance at path.
func (s *InstanceStore) Get(path string) (domain.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[filepath.Clean(path)]
	if !ok {
		return domain.Instance{}, fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, path)
	}
	return inst, nil
}

// Selected returns the selected instance.
func (s *InstanceStore) Selected() (domain.Instance, error) {
	s.mu.RLock()
	path := s.cfg.SelectedInstance
	s.mu.RUnlock()
	if path == "" {
		return domain.Instance{}, domain.ErrNoInstanceSelected
	}
	return s.Get(path)
}

// Create adds a new instance. The path must be absolute.
func (s *InstanceStore) Create(inst domain.Instance) error {
	if !filepath.IsAbs(inst.Path) {
		return fmt.Errorf("%w: instance path must be absolute", domain.ErrInvalidConfig)
	}
	inst.Path = filepath.Clean(inst.Path)
	if inst.Name == "" {
		inst.Name = filepath.Base(inst.Path)
	}

	s.mu.Lock()
	if _, ok := s.instances[inst.Path]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrInstanceExists, inst.Path)
	}
	s.instances[inst.Path] = inst
	err := s.saveLocked()
	s.mu.Unlock()
	return err
}

// Delete removes an instance and clears the selection when it pointed there.
func (s *InstanceStore) Delete(path string) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[path]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, path)
	}
	delete(s.instances, path)
	if s.cfg.SelectedInstance == path {
		s.cfg.SelectedInstance = ""
		if err := s.cfg.Save(s.dir); err != nil {
			return err
		}
	}
	return s.saveLocked()
}

// Select makes the instance at path the selected one.
func (s *InstanceStore) Select(path string) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	if _, ok := s.instances[path]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, path)
	}
	s.cfg.SelectedInstance = path
	err := s.cfg.Save(s.dir)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	publish(s.bus, event.InstanceSelected{Path: path})
	return nil
}

// SetRuntime replaces the runtime composition of an instance.
func (s *InstanceStore) SetRuntime(path string, rt domain.RuntimeVersions) error {
	path, err := s.update(path, func(inst *domain.Instance) { inst.Runtime = rt })
	if err != nil {
		return err
	}
	publish(s.bus, event.RuntimeEdited{Path: path, Runtime: rt})
	return nil
}

// SetJava sets the java executable of an instance; empty means default.
func (s *InstanceStore) SetJava(path, java string) error {
	path, err := s.update(path, func(inst *domain.Instance) { inst.Java = java })
	if err != nil {
		return err
	}
	publish(s.bus, event.JavaChanged{Path: path})
	return nil
}

// SetResourcePacks replaces the enabled resource packs, in load order.
func (s *InstanceStore) SetResourcePacks(path string, packs []string) error {
	path, err := s.update(path, func(inst *domain.Instance) { inst.ResourcePacks = append([]string(nil), packs...) })
	if err != nil {
		return err
	}
	publish(s.bus, event.ResourcePacksChanged{Path: path})
	return nil
}

// SetServer sets the server the instance joins; nil clears it.
func (s *InstanceStore) SetServer(path string, addr *domain.ServerAddress) error {
	_, err := s.update(path, func(inst *domain.Instance) { inst.Server = addr })
	return err
}

func (s *InstanceStore) update(path string, fn func(*domain.Instance)) (string, error) {
	path = filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[path]
	if !ok {
		return path, fmt.Errorf("%w: %s", domain.ErrInstanceNotFound, path)
	}
	fn(&inst)
	s.instances[path] = inst
	return path, s.saveLocked()
}

// publish runs outside the store lock; subscribers may read the store.
func publish[E any](bus *event.Bus, e E) {
	if bus != nil {
		event.Publish(bus, e)
	}
}

func (s *InstanceStore) saveLocked() error {
	file := InstancesFile{Instances: make(map[string]InstanceConfig, len(s.instances))}
	for path, inst := range s.instances {
		file.Instances[path] = InstanceConfig{
			Name:          inst.Name,
			Runtime:       inst.Runtime,
			Java:          inst.Java,
			ResourcePacks: inst.ResourcePacks,
			Server:        inst.Server,
			MinMemory:     inst.MinMemory,
			MaxMemory:     inst.MaxMemory,
		}
	}
	return writeYAML(filepath.Join(s.dir, "instances.yaml"), &file)
}
