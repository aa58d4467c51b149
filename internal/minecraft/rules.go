package minecraft

import "runtime"

// Rule allows or disallows an entry on a platform or feature set.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule matches the running operating system.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Platform describes where a version will run.
type Platform struct {
	Name     string // "linux", "osx" or "windows"
	Arch     string // "x86", "x64" or "arm64"
	Features map[string]bool
}

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	name := runtime.GOOS
	if name == "darwin" {
		name = "osx"
	}
	arch := "x64"
	switch runtime.GOARCH {
	case "386", "arm":
		arch = "x86"
	case "arm64":
		arch = "arm64"
	}
	return Platform{Name: name, Arch: arch}
}

// Allowed evaluates rules in order; the last matching rule decides. An empty
// rule list allows.
func (p Platform) Allowed(rules []Rule) bool {
	if len(rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range rules {
		if p.matches(r) {
			allowed = r.Action == "allow"
		}
	}
	return allowed
}

func (p Platform) matches(r Rule) bool {
	if r.OS != nil {
		if r.OS.Name != "" && r.OS.Name != p.Name {
			return false
		}
		if r.OS.Arch != "" && r.OS.Arch != p.Arch {
			return false
		}
		// os.version only narrows windows and osx entries; it is not checked
	}
	for k, want := range r.Features {
		if p.Features[k] != want {
			return false
		}
	}
	return true
}
