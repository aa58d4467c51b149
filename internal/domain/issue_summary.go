package domain

import (
	"fmt"
	"strings"
)

// Summary renders the issue as one line for terminals and logs.
func (i Issue) Summary() string {
	if i.Multi {
		return fmt.Sprintf("%s: %d items", i.Kind, len(i.Items))
	}
	if i.Args == nil {
		return string(i.Kind)
	}
	return string(i.Kind) + ": " + describe(i.Args)
}

func describe(a IssueArgs) string {
	switch a := a.(type) {
	case MissingVersionArgs:
		if a.Runtime.Minecraft == "" {
			return "no minecraft version chosen"
		}
		return a.Runtime.ExpectedID()
	case VersionFileArgs:
		return a.Version + " " + a.Path
	case LibraryArgs:
		return a.Name
	case AssetArgs:
		return a.Name
	case BadInstallArgs:
		return fmt.Sprintf("%s (%d processors pending)", a.Version, len(a.Processors))
	case JavaArgs:
		switch {
		case a.Type == JavaRuleArchitecture:
			return a.Java + " is a 32-bit runtime on a 64-bit host"
		case a.Required > 0:
			return fmt.Sprintf("%s is java %d, need %d (%s)", a.Java, a.Major, a.Required, a.Type)
		case a.Type != "":
			return fmt.Sprintf("%s is java %d (%s)", a.Java, a.Major, a.Type)
		case a.Java != "":
			return a.Java
		}
		return "no java runtime found"
	case ModArgs:
		if a.Accepted == "" {
			return a.Name
		}
		return fmt.Sprintf("%s accepts %s, game is %s", a.Name, a.Accepted, a.Minecraft)
	case RequireLoaderArgs:
		return a.Loader + " needed by " + strings.Join(a.Mods, ", ")
	case ResourcePackArgs:
		return fmt.Sprintf("%s has format %d, game %s accepts %s", a.Name, a.PackFormat, a.Minecraft, a.Accepted)
	case AuthlibArgs:
		return "authlib-injector needed for " + a.AuthService
	case ServerModsArgs:
		ids := make([]string, len(a.Mods))
		for i, m := range a.Mods {
			ids[i] = m.ModID
		}
		return a.Server + " requires " + strings.Join(ids, ", ")
	}
	return ""
}
