package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingComponentVersion  = errors.New("missing component version")
	ErrMissingMinecraftVersion  = errors.New("missing minecraft version")
	ErrMissingForgeVersion      = errors.New("missing forge version")
	ErrMissingLiteloaderVersion = errors.New("missing liteloader version")
	ErrMissingFabricVersion     = errors.New("missing fabric version")
	ErrVersionNotFound          = errors.New("version not found")
	ErrInstanceNotFound         = errors.New("instance not found")
	ErrNoInstanceSelected       = errors.New("no instance selected")
	ErrInstanceExists           = errors.New("instance already exists")
	ErrAccountNotFound          = errors.New("account not found")
	ErrJavaNotFound             = errors.New("java not found")
	ErrDependencyLoop           = errors.New("circular inheritsFrom chain detected")
	ErrInvalidConfig            = errors.New("invalid configuration")
	ErrDownloadFailed           = errors.New("download failed")
	ErrLinkFailed               = errors.New("link operation failed")
	ErrBlockedByIssues          = errors.New("launch blocked by issues")
)

// Component identifies one part of a runtime composition.
type Component string

const (
	ComponentMinecraft  Component = "minecraft"
	ComponentForge      Component = "forge"
	ComponentLiteloader Component = "liteloader"
	ComponentFabric     Component = "fabric"
)

// MissingComponentVersionError reports that no installed version provides a
// requested component. Suggestions holds close local version ids.
type MissingComponentVersionError struct {
	Component   Component
	Version     string
	Minecraft   string
	Suggestions []string
}

func (e *MissingComponentVersionError) Error() string {
	msg := fmt.Sprintf("missing %s version %q", e.Component, e.Version)
	if e.Component != ComponentMinecraft && e.Minecraft != "" {
		msg += fmt.Sprintf(" for minecraft %s", e.Minecraft)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (installed: %s)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Is matches ErrMissingComponentVersion and the component's own sentinel.
func (e *MissingComponentVersionError) Is(target error) bool {
	if target == ErrMissingComponentVersion {
		return true
	}
	switch e.Component {
	case ComponentMinecraft:
		return target == ErrMissingMinecraftVersion
	case ComponentForge:
		return target == ErrMissingForgeVersion
	case ComponentLiteloader:
		return target == ErrMissingLiteloaderVersion
	case ComponentFabric:
		return target == ErrMissingFabricVersion
	}
	return false
}

// BlockedByIssuesError carries the non-optional issues left after repair.
type BlockedByIssuesError struct {
	Issues []Issue
}

func (e *BlockedByIssuesError) Error() string {
	return fmt.Sprintf("launch blocked by %d issue(s): %s", len(e.Issues), KindList(e.Issues))
}

func (e *BlockedByIssuesError) Unwrap() error {
	return ErrBlockedByIssues
}
