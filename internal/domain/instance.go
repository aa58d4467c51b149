package domain

import (
	"net"
	"strconv"
	"time"
)

// Instance is one isolated game installation with its own runtime selection.
type Instance struct {
	Path          string          // Game directory; also the instance key
	Name          string          // Display name
	Runtime       RuntimeVersions // Desired composition
	Java          string          // Java executable path, empty means default
	ResourcePacks []string        // Enabled pack file names, in load order
	Server        *ServerAddress  // Optional server to join and ping
	MinMemory     int             // MiB, 0 means unset
	MaxMemory     int             // MiB, 0 means unset
}

// ServerAddress is a host and port pair.
type ServerAddress struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

func (a ServerAddress) String() string {
	port := a.Port
	if port == 0 {
		port = 25565
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(port))
}

// Auth services recognised without an injector.
const (
	AuthServiceMojang    = "mojang"
	AuthServiceOffline   = "offline"
	AuthServiceMicrosoft = "microsoft"
)

// Account is a logged-in user identity.
type Account struct {
	ID          string
	Username    string
	UUID        string
	AuthService string // "mojang", "offline", "microsoft" or a third-party server URL
	AccessToken string
}

// NeedsAuthlibInjector reports whether launching with the account requires the
// authlib-injector agent.
func (a Account) NeedsAuthlibInjector() bool {
	switch a.AuthService {
	case AuthServiceMojang, AuthServiceOffline, AuthServiceMicrosoft, "":
		return false
	}
	return true
}

// JavaRecord is a discovered java runtime.
type JavaRecord struct {
	Path      string
	Version   string // Full version string, e.g. "17.0.8" or "1.8.0_382"
	Major     int
	Arch      string // os.arch reported by the runtime
	Valid     bool
	CheckedAt time.Time
}

// Mod loaders a resource can target.
const (
	LoaderForge      = "forge"
	LoaderFabric     = "fabric"
	LoaderLiteloader = "liteloader"
)

// ModResource is an installed mod with parsed metadata.
type ModResource struct {
	Name              string
	Path              string
	Hash              string // sha1 of the file
	Loader            string
	ModID             string
	Version           string
	AcceptedMinecraft string   // Accepted game-version expression, empty if undeclared
	Depends           []string // Mod ids the mod depends on
}

// ResourcePack is an installed resource pack.
type ResourcePack struct {
	Name        string
	Path        string
	Hash        string
	PackFormat  int
	Description string
}

// ServerMod is a mod advertised by a server.
type ServerMod struct {
	ModID   string `json:"modid"`
	Version string `json:"version"`
}

// ServerStatus is the last known ping result of a server.
type ServerStatus struct {
	Address  string
	Version  string
	Protocol int
	Mods     []ServerMod
	PingedAt time.Time
}
