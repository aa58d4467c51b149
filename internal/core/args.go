package core

import (
	"crypto/md5"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/google/uuid"
)

// LauncherName and LauncherVersion are reported to the game.
const (
	LauncherName    = "lmc"
	LauncherVersion = "0.1.0"
)

var placeholder = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// expand replaces ${name} placeholders with vars. Unknown names are kept.
func expand(s string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := vars[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// OfflineUUID derives the uuid an offline-mode server assigns to name.
func OfflineUUID(name string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum).String()
}

// OfflineAccount builds an offline account for username.
func OfflineAccount(username string) domain.Account {
	return domain.Account{
		ID:          strings.ToLower(username),
		Username:    username,
		UUID:        OfflineUUID(username),
		AuthService: domain.AuthServiceOffline,
	}
}

func userType(a domain.Account) string {
	switch a.AuthService {
	case domain.AuthServiceMicrosoft:
		return "msa"
	case domain.AuthServiceOffline:
		return "legacy"
	}
	return "mojang"
}

// LaunchSpec is everything needed to build a game command line.
type LaunchSpec struct {
	Folder   minecraft.Folder
	Platform minecraft.Platform
	Version  *minecraft.ResolvedVersion
	Instance domain.Instance
	Account  domain.Account
	Natives  string
	// Authlib is the injector jar; set only for third-party accounts.
	Authlib string
}

// Classpath lists the non-native libraries followed by the main jar.
func (l LaunchSpec) Classpath() []string {
	var cp []string
	for _, lib := range l.Version.Libraries {
		if lib.Native {
			continue
		}
		cp = append(cp, l.Folder.LibraryPath(lib.Path))
	}
	return append(cp, l.Folder.VersionJar(l.Version.JarID))
}

func (l LaunchSpec) vars() map[string]string {
	token := l.Account.AccessToken
	if token == "" {
		token = "0"
	}
	uid := strings.ReplaceAll(l.Account.UUID, "-", "")
	assets := l.Folder.AssetsDir()
	return map[string]string{
		"auth_player_name":    l.Account.Username,
		"auth_uuid":           uid,
		"auth_access_token":   token,
		"auth_session":        token,
		"user_type":           userType(l.Account),
		"user_properties":     "{}",
		"version_name":        l.Version.ID,
		"version_type":        l.Version.Type,
		"game_directory":      l.Instance.Path,
		"assets_root":         assets,
		"game_assets":         assets,
		"assets_index_name":   l.Version.Assets,
		"natives_directory":   l.Natives,
		"library_directory":   l.Folder.LibrariesDir(),
		"classpath_separator": string(os.PathListSeparator),
		"classpath":           strings.Join(l.Classpath(), string(os.PathListSeparator)),
		"launcher_name":       LauncherName,
		"launcher_version":    LauncherVersion,
	}
}

func (l LaunchSpec) expandArgs(args []minecraft.Argument, vars map[string]string) []string {
	var out []string
	for _, a := range args {
		if !l.Platform.Allowed(a.Rules) {
			continue
		}
		for _, v := range a.Values {
			out = append(out, expand(v, vars))
		}
	}
	return out
}

// Args returns the java arguments: JVM options, main class, game options.
func (l LaunchSpec) Args() []string {
	vars := l.vars()
	var args []string

	if l.Authlib != "" {
		args = append(args, "-javaagent:"+l.Authlib+"="+l.Account.AuthService)
	}
	if l.Instance.MinMemory > 0 {
		args = append(args, "-Xms"+strconv.Itoa(l.Instance.MinMemory)+"M")
	}
	if l.Instance.MaxMemory > 0 {
		args = append(args, "-Xmx"+strconv.Itoa(l.Instance.MaxMemory)+"M")
	}
	if len(l.Version.JVMArgs) > 0 {
		args = append(args, l.expandArgs(l.Version.JVMArgs, vars)...)
	} else {
		args = append(args,
			"-Djava.library.path="+vars["natives_directory"],
			"-Dminecraft.launcher.brand="+LauncherName,
			"-Dminecraft.launcher.version="+LauncherVersion,
			"-cp", vars["classpath"],
		)
	}

	args = append(args, l.Version.MainClass)

	if l.Version.MinecraftArguments != "" && len(l.Version.GameArgs) == 0 {
		for _, f := range strings.Fields(l.Version.MinecraftArguments) {
			args = append(args, expand(f, vars))
		}
	} else {
		args = append(args, l.expandArgs(l.Version.GameArgs, vars)...)
	}

	if srv := l.Instance.Server; srv != nil && srv.Host != "" {
		port := srv.Port
		if port == 0 {
			port = 25565
		}
		args = append(args, "--server", srv.Host, "--port", strconv.Itoa(port))
	}
	return args
}

// Command returns java followed by Args, for display.
func (l LaunchSpec) Command(java string) []string {
	return append([]string{filepath.Clean(java)}, l.Args()...)
}
