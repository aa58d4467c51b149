package core

import (
	"context"
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// await reports h to the task observer and waits for it. ok is false when
// the operation was not started because a conflicting install was running.
func await[T any](ctx context.Context, s *Service, h *task.Handle[T], ok bool) (T, bool, error) {
	var zero T
	if !ok {
		return zero, false, nil
	}
	if s.observe != nil {
		s.observe(h)
	}
	v, err := h.Wait(ctx)
	return v, true, err
}

// InstallRuntime installs the base game and then each requested loader of
// rt, and returns the version id that launches the whole composition. ok is
// false when an install step could not start because another install was
// running; nothing after that step is attempted.
func (s *Service) InstallRuntime(ctx context.Context, rt domain.RuntimeVersions) (id string, ok bool, err error) {
	log := ctxlog.FromContext(ctx)
	if rt.Minecraft == "" {
		return "", true, &domain.MissingComponentVersionError{Component: domain.ComponentMinecraft}
	}

	steps := []struct {
		want  string
		start func() (*task.Handle[string], bool)
	}{
		{rt.Minecraft, func() (*task.Handle[string], bool) { return s.installer.InstallMinecraft(ctx, rt.Minecraft) }},
		{rt.Forge, func() (*task.Handle[string], bool) { return s.installer.InstallForge(ctx, rt.Minecraft, rt.Forge) }},
		{rt.FabricLoader, func() (*task.Handle[string], bool) { return s.installer.InstallFabric(ctx, rt.Minecraft, rt.FabricLoader) }},
		{rt.Liteloader, func() (*task.Handle[string], bool) { return s.installer.InstallLiteloader(ctx, rt.Minecraft, rt.Liteloader) }},
	}
	for _, st := range steps {
		if st.want == "" {
			continue
		}
		h, started := st.start()
		if _, ok, err := await(ctx, s, h, started); !ok || err != nil {
			return "", ok, err
		}
	}
	if rt.Optifine != "" {
		log.Warn("optifine installation is not supported", "optifine", rt.Optifine)
	}

	id, err = s.resolver.Resolve(rt)
	if err != nil {
		return "", true, fmt.Errorf("resolving installed runtime: %w", err)
	}
	return id, true, nil
}

// InstallAuthlibInjector installs the latest authlib-injector and returns
// its path.
func (s *Service) InstallAuthlibInjector(ctx context.Context) (string, bool, error) {
	h, ok := s.installer.InstallAuthlibInjector(ctx)
	return await(ctx, s, h, ok)
}

// InstallDependencies installs every library and asset of version id.
func (s *Service) InstallDependencies(ctx context.Context, id string) (*install.BatchResult, bool, error) {
	h, ok := s.installer.InstallDependencies(ctx, id)
	res, ok, err := await(ctx, s, h, ok)
	if err == nil {
		err = res.Err()
	}
	return res, ok, err
}
