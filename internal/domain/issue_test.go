package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssue_DefaultFlags(t *testing.T) {
	tests := []struct {
		kind     domain.IssueKind
		autofix  bool
		optional bool
	}{
		{domain.IssueMissingLibraries, true, false},
		{domain.IssueBadInstall, true, false},
		{domain.IssueUnknownMod, false, true},
		{domain.IssueIncompatibleJava, false, false},
		{domain.IssueMissingModsOnServer, false, false},
	}

	for _, tt := range tests {
		is := domain.NewIssue(tt.kind, domain.LibraryArgs{})
		assert.Equal(t, tt.autofix, is.AutoFix, tt.kind)
		assert.Equal(t, tt.optional, is.Optional, tt.kind)
	}
}

func TestNewIssues_CollapsesLongLists(t *testing.T) {
	two := []domain.LibraryArgs{{Name: "a:a:1"}, {Name: "b:b:1"}}
	issues := domain.NewIssues(domain.IssueMissingLibraries, two)
	require.Len(t, issues, 2)
	assert.False(t, issues[0].Multi)

	three := append(two, domain.LibraryArgs{Name: "c:c:1"})
	issues = domain.NewIssues(domain.IssueMissingLibraries, three)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Multi)
	assert.Len(t, issues[0].Flatten(), 3)

	libs := domain.ArgsOf[domain.LibraryArgs](issues)
	assert.Equal(t, "c:c:1", libs[2].Name)
}

func TestNewIssues_EmptyIsNonNil(t *testing.T) {
	issues := domain.NewIssues[domain.AssetArgs](domain.IssueMissingAssets, nil)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestIssueReport_MergeOverwritesOwnedKeys(t *testing.T) {
	r := domain.IssueReport{
		domain.IssueMissingJava: {domain.NewIssue(domain.IssueMissingJava, domain.JavaArgs{})},
		domain.IssueUnknownMod:  {domain.NewIssue(domain.IssueUnknownMod, domain.ModArgs{Name: "x"})},
	}

	r.Merge(domain.IssueReport{domain.IssueMissingJava: {}})

	assert.Empty(t, r[domain.IssueMissingJava])
	assert.Len(t, r[domain.IssueUnknownMod], 1)
}

func TestIssueReport_ActiveIsDeterministic(t *testing.T) {
	r := domain.IssueReport{
		domain.IssueMissingModsOnServer: {domain.NewIssue(domain.IssueMissingModsOnServer, domain.ServerModsArgs{})},
		domain.IssueMissingVersion:      {domain.NewIssue(domain.IssueMissingVersion, domain.MissingVersionArgs{})},
		domain.IssueMissingJava:         {domain.NewIssue(domain.IssueMissingJava, domain.JavaArgs{})},
	}

	first, err := json.Marshal(r.Active())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(r.Clone().Active())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	active := r.Active()
	assert.Equal(t, domain.IssueMissingVersion, active[0].Kind)
	assert.Equal(t, domain.IssueMissingModsOnServer, active[2].Kind)
}

func TestRuntimeVersions_ExpectedID(t *testing.T) {
	tests := []struct {
		rt   domain.RuntimeVersions
		want string
	}{
		{domain.RuntimeVersions{Minecraft: "1.16.5"}, "1.16.5"},
		{domain.RuntimeVersions{Minecraft: "1.16.5", Forge: "36.2.0"}, "1.16.5-forge36.2.0"},
		{domain.RuntimeVersions{Minecraft: "1.12.2", Forge: "14.23.5", Liteloader: "1.12"}, "1.12.2-forge14.23.5-liteloader1.12"},
		{domain.RuntimeVersions{Minecraft: "1.20.1", FabricLoader: "0.14.21"}, "1.20.1-fabric0.14.21"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rt.ExpectedID())
	}
}

func TestSameForgeVersion(t *testing.T) {
	assert.True(t, domain.SameForgeVersion("1.12.2", "14.23.5.2859", "14.23.5.2859"))
	assert.True(t, domain.SameForgeVersion("1.12.2", "1.12.2-14.23.5.2859", "14.23.5.2859"))
	assert.True(t, domain.SameForgeVersion("1.12.2", "14.23.5.2859-1.12.2", "14.23.5.2859"))
	assert.True(t, domain.SameForgeVersion("1.7.10", "1.7.10-10.13.4.1614-1.7.10", "10.13.4.1614"))
	assert.True(t, domain.SameForgeVersion("1.16.5", "1.16.5-36.2.0", "1.16.5-36.2.0"))
	assert.False(t, domain.SameForgeVersion("1.16.5", "36.2.0", "36.1.0"))
	// the game version alone is not a forge version
	assert.False(t, domain.SameForgeVersion("1.12.2", "1.12.2-14.23.5.2859", "1.12.2"))
	assert.False(t, domain.SameForgeVersion("1.12.2", "1.12.2-14.23.5.2859", "14.23.5"))
}

func TestMissingComponentVersionError_Is(t *testing.T) {
	err := &domain.MissingComponentVersionError{Component: domain.ComponentForge, Version: "36.2.0", Minecraft: "1.16.5"}

	assert.True(t, errors.Is(err, domain.ErrMissingComponentVersion))
	assert.True(t, errors.Is(err, domain.ErrMissingForgeVersion))
	assert.False(t, errors.Is(err, domain.ErrMissingLiteloaderVersion))
	assert.Contains(t, err.Error(), "forge")
}

func TestBlockedByIssuesError(t *testing.T) {
	err := &domain.BlockedByIssuesError{Issues: []domain.Issue{
		domain.NewIssue(domain.IssueIncompatibleJava, domain.JavaArgs{}),
	}}

	assert.ErrorIs(t, err, domain.ErrBlockedByIssues)
	assert.Contains(t, err.Error(), "incompatibleJava")
}

func TestAccount_NeedsAuthlibInjector(t *testing.T) {
	assert.False(t, domain.Account{AuthService: domain.AuthServiceMicrosoft}.NeedsAuthlibInjector())
	assert.True(t, domain.Account{AuthService: "https://littleskin.cn/api/yggdrasil"}.NeedsAuthlibInjector())
}

func TestParseLinkMethod(t *testing.T) {
	assert.Equal(t, domain.LinkCopy, domain.ParseLinkMethod("copy"))
	assert.Equal(t, domain.LinkSymlink, domain.ParseLinkMethod("bogus"))
	assert.Equal(t, "hardlink", domain.LinkHardlink.String())
}

func TestIssue_Summary(t *testing.T) {
	tests := []struct {
		name string
		is   domain.Issue
		want string
	}{
		{
			"runtime",
			domain.NewIssue(domain.IssueMissingVersion, domain.MissingVersionArgs{Runtime: domain.RuntimeVersions{Minecraft: "1.12.2", Forge: "14.23.5.2859"}}),
			"missingVersion: 1.12.2-forge14.23.5.2859",
		},
		{
			"no runtime",
			domain.NewIssue(domain.IssueMissingVersion, domain.MissingVersionArgs{}),
			"missingVersion: no minecraft version chosen",
		},
		{
			"java required",
			domain.NewIssue(domain.IssueIncompatibleJava, domain.JavaArgs{Java: "/usr/bin/java", Major: 8, Required: 17, Type: domain.JavaRuleRequired}),
			"incompatibleJava: /usr/bin/java is java 8, need 17 (RequiredVersion)",
		},
		{
			"server mods",
			domain.NewIssue(domain.IssueMissingModsOnServer, domain.ServerModsArgs{Server: "mc:25565", Mods: []domain.ServerMod{{ModID: "jei"}, {ModID: "create"}}}),
			"missingModsOnServer: mc:25565 requires jei, create",
		},
		{
			"multi",
			domain.NewIssues(domain.IssueMissingAssets, []domain.AssetArgs{{Name: "a"}, {Name: "b"}, {Name: "c"}})[0],
			"missingAssets: 3 items",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.is.Summary())
		})
	}
}
