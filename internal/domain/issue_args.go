package domain

// IssueArgs is the payload of an issue. The set of payload types is closed;
// each one documents the kinds that carry it.
type IssueArgs interface {
	issueArgs()
}

// MissingVersionArgs carries the runtime that has no installed version.
// Kind: missingVersion.
type MissingVersionArgs struct {
	Runtime RuntimeVersions `json:"runtime"`
}

// VersionFileArgs describes a version-level file: descriptor, main jar or
// asset index. Kinds: missing/corrupted VersionJson, VersionJar, AssetsIndex.
type VersionFileArgs struct {
	Version   string          `json:"version"`
	Minecraft string          `json:"minecraft"`
	Path      string          `json:"path"`
	Expected  string          `json:"expected,omitempty"`
	Runtime   RuntimeVersions `json:"runtime"`
}

// LibraryArgs describes one library artifact. Kinds: missing/corrupted
// Libraries.
type LibraryArgs struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	URL      string `json:"url,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Size     int64  `json:"size"`
}

// AssetArgs describes one asset object. Kinds: missing/corrupted Assets.
type AssetArgs struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// BadInstallArgs describes a staged install whose processors have not
// produced their outputs. Kind: badInstall.
type BadInstallArgs struct {
	Version     string   `json:"version"`
	Minecraft   string   `json:"minecraft"`
	ProfilePath string   `json:"profile"`
	Processors  []string `json:"processors"`
}

// JavaArgs describes a java runtime problem. Kinds: missingJava, invalidJava,
// incompatibleJava. Type names the rule that was broken.
type JavaArgs struct {
	Java      string `json:"java,omitempty"`
	Version   string `json:"version,omitempty"`
	Major     int    `json:"major,omitempty"`
	Required  int    `json:"required,omitempty"`
	Type      string `json:"type,omitempty"`
	Minecraft string `json:"minecraft,omitempty"`
	Forge     string `json:"forge,omitempty"`
}

// Rule names for incompatibleJava.
const (
	JavaRuleMinecraft    = "Minecraft"
	JavaRuleForge        = "MinecraftForge"
	JavaRuleRequired     = "RequiredVersion"
	JavaRuleArchitecture = "Architecture"
)

// ModArgs describes one mod and the game-version range it accepts. Kinds:
// unknownMod, incompatibleMod.
type ModArgs struct {
	Name      string `json:"name"`
	ModID     string `json:"modId"`
	Path      string `json:"path"`
	Accepted  string `json:"accepted,omitempty"`
	Minecraft string `json:"minecraft"`
}

// RequireLoaderArgs lists mods that need a loader absent from the runtime.
// Kinds: requireForge, requireFabric, requireFabricAPI.
type RequireLoaderArgs struct {
	Loader string   `json:"loader"`
	Mods   []string `json:"mods"`
}

// ResourcePackArgs describes a pack whose format does not match the game.
// Kind: incompatibleResourcePack.
type ResourcePackArgs struct {
	Name       string `json:"name"`
	PackFormat int    `json:"packFormat"`
	Accepted   string `json:"accepted"`
	Minecraft  string `json:"minecraft"`
}

// AuthlibArgs names the third-party auth service requiring the injector.
// Kind: missingAuthlibInjector.
type AuthlibArgs struct {
	AuthService string `json:"authService"`
	Path        string `json:"path,omitempty"`
}

// ServerModsArgs lists mods the server advertises that the instance lacks.
// Kind: missingModsOnServer.
type ServerModsArgs struct {
	Server string      `json:"server"`
	Mods   []ServerMod `json:"mods"`
}

func (MissingVersionArgs) issueArgs() {}
func (VersionFileArgs) issueArgs()    {}
func (LibraryArgs) issueArgs()        {}
func (AssetArgs) issueArgs()          {}
func (BadInstallArgs) issueArgs()     {}
func (JavaArgs) issueArgs()           {}
func (ModArgs) issueArgs()            {}
func (RequireLoaderArgs) issueArgs()  {}
func (ResourcePackArgs) issueArgs()   {}
func (AuthlibArgs) issueArgs()        {}
func (ServerModsArgs) issueArgs()     {}
