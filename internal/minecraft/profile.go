package minecraft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// InstallProfile is a staged installer's install_profile.json.
type InstallProfile struct {
	Spec       int                  `json:"spec"`
	Profile    string               `json:"profile"`
	Version    string               `json:"version"`
	JSON       string               `json:"json"`
	Path       string               `json:"path,omitempty"`
	Minecraft  string               `json:"minecraft"`
	Data       map[string]SidedData `json:"data,omitempty"`
	Processors []Processor          `json:"processors,omitempty"`
	Libraries  []Library            `json:"libraries,omitempty"`
}

// SidedData is a data entry with client and server values.
type SidedData struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// Processor is one external step of a staged install.
type Processor struct {
	Sides     []string          `json:"sides,omitempty"`
	Jar       string            `json:"jar"`
	Classpath []string          `json:"classpath"`
	Args      []string          `json:"args"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

// ForClient reports whether the processor runs for the client side.
func (p Processor) ForClient() bool {
	return len(p.Sides) == 0 || slices.Contains(p.Sides, "client")
}

// ReadInstallProfile parses an install_profile.json file.
func ReadInstallProfile(path string) (*InstallProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p InstallProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing install profile: %w", err)
	}
	return &p, nil
}

// WriteInstallProfile stores p under the version folder of id.
func (f Folder) WriteInstallProfile(id string, p *InstallProfile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding install profile: %w", err)
	}
	return WriteFileAtomic(f.InstallProfile(id), data)
}

// ProfileVars resolves the placeholders used by processor arguments and
// outputs.
type ProfileVars struct {
	folder    Folder
	profile   *InstallProfile
	installer string
	values    map[string]string
}

// NewProfileVars prepares placeholder values for profile. installer is the
// path of the installer jar, used for {INSTALLER} and data paths that point
// inside it; extracted data lives under dataDir.
func NewProfileVars(f Folder, p *InstallProfile, installer, dataDir string) *ProfileVars {
	v := &ProfileVars{folder: f, profile: p, installer: installer, values: map[string]string{
		"SIDE":              "client",
		"ROOT":              f.Root,
		"MINECRAFT_VERSION": p.Minecraft,
		"MINECRAFT_JAR":     f.VersionJar(p.Minecraft),
		"LIBRARY_DIR":       f.LibrariesDir(),
		"INSTALLER":         installer,
	}}
	for k, d := range p.Data {
		v.values[k] = v.resolveData(d.Client, dataDir)
	}
	return v
}

func (v *ProfileVars) resolveData(s, dataDir string) string {
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		if c, err := ParseCoordinate(s[1 : len(s)-1]); err == nil {
			return v.folder.LibraryPath(c.Path())
		}
	case strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"):
		return s[1 : len(s)-1]
	case strings.HasPrefix(s, "/"):
		return filepath.Join(dataDir, filepath.FromSlash(s))
	}
	return s
}

// Expand substitutes {NAME} references and resolves a bare [coordinate] to
// its library path.
func (v *ProfileVars) Expand(s string) string {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if c, err := ParseCoordinate(s[1 : len(s)-1]); err == nil {
			return v.folder.LibraryPath(c.Path())
		}
	}
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s[1 : len(s)-1]
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s)
			break
		}
		name := s[open+1 : open+end]
		b.WriteString(s[:open])
		if val, ok := v.values[name]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(s[open : open+end+1])
		}
		s = s[open+end+1:]
	}
	return b.String()
}

// DiagnoseProcessors returns the client processors whose declared outputs
// are missing or do not match their expected sha1. Processors without
// declared outputs cannot be verified and are not reported.
func DiagnoseProcessors(f Folder, p *InstallProfile) ([]Processor, error) {
	vars := NewProfileVars(f, p, "", f.VersionDir(p.Version))
	var failed []Processor
	for _, proc := range p.Processors {
		if !proc.ForClient() || len(proc.Outputs) == 0 {
			continue
		}
		keys := make([]string, 0, len(proc.Outputs))
		for k := range proc.Outputs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			path := vars.Expand(k)
			sum := SHA1(vars.Expand(proc.Outputs[k]))
			state, err := CheckFile(path, sum, 0)
			if err != nil && state != FileCorrupted {
				return nil, fmt.Errorf("checking processor output %s: %w", path, err)
			}
			if state != FileOK {
				failed = append(failed, proc)
				break
			}
		}
	}
	return failed, nil
}
