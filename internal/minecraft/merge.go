package minecraft

import (
	"strings"
)

// MergeLibraries concatenates library lists, deduplicating by maven key
// (group, artifact, classifier). A later declaration replaces an earlier one
// in the earlier one's position. Native entries keep their own key so they
// never displace the main artifact.
func MergeLibraries(lists ...[]Library) []Library {
	var out []Library
	index := make(map[string]int)
	for _, list := range lists {
		for _, lib := range list {
			key := libraryKey(lib)
			if i, ok := index[key]; ok {
				out[i] = lib
				continue
			}
			index[key] = len(out)
			out = append(out, lib)
		}
	}
	return out
}

func libraryKey(lib Library) string {
	c, err := ParseCoordinate(lib.Name)
	if err != nil {
		return lib.Name
	}
	k := c.Key()
	if lib.Natives != nil {
		k += ":natives"
	}
	return k
}

// Compose synthesizes the descriptor of a virtual version that launches
// several loader chains built on the same base version. Each chain is leaf
// first. Levels shared with the base are left to inheritsFrom; the rest are
// merged in chain order: libraries last-declared wins, argument lists
// concatenated, legacy argument strings merged pairwise, main class last
// non-empty.
func Compose(id, base string, chains ...[]*Descriptor) *Descriptor {
	out := &Descriptor{ID: id, InheritsFrom: base, Type: "release"}
	var libs [][]Library
	var legacy []string

	for _, chain := range chains {
		for i := len(chain) - 1; i >= 0; i-- {
			d := chain[i]
			if isAncestor(chain, i, base) {
				continue
			}
			if d.MainClass != "" {
				out.MainClass = d.MainClass
			}
			if d.Type != "" {
				out.Type = d.Type
			}
			if d.Arguments != nil {
				if out.Arguments == nil {
					out.Arguments = &Arguments{}
				}
				out.Arguments.Game = append(out.Arguments.Game, d.Arguments.Game...)
				out.Arguments.JVM = append(out.Arguments.JVM, d.Arguments.JVM...)
			}
			if d.MinecraftArguments != "" {
				legacy = append(legacy, d.MinecraftArguments)
			}
			libs = append(libs, d.Libraries)
		}
	}
	out.Libraries = MergeLibraries(libs...)
	out.MinecraftArguments = MergeLegacyArguments(legacy...)
	return out
}

// isAncestor reports whether base sits below index i in a leaf-first chain,
// meaning chain[i] is the base or one of its ancestors.
func isAncestor(chain []*Descriptor, i int, base string) bool {
	for j := i; j >= 0; j-- {
		if chain[j].ID == base {
			return true
		}
	}
	return false
}

// MergeLegacyArguments merges minecraftArguments strings. Flag/value pairs
// are kept once per flag except --tweakClass, which is kept once per value.
func MergeLegacyArguments(args ...string) string {
	type pair struct{ flag, value string }
	var pairs []pair
	seen := make(map[string]bool)

	for _, a := range args {
		tokens := strings.Fields(a)
		for i := 0; i < len(tokens); i++ {
			p := pair{flag: tokens[i]}
			if strings.HasPrefix(p.flag, "--") && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
				p.value = tokens[i+1]
				i++
			}
			key := p.flag
			if p.flag == "--tweakClass" {
				key += " " + p.value
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, p)
		}
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.flag)
		if p.value != "" {
			b.WriteByte(' ')
			b.WriteString(p.value)
		}
	}
	return b.String()
}
