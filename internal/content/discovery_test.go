package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const goodPage = "---\ntitle: Build a paymaster\ndescription: Sponsor gas fees.\n---\n# Intro\n"

func TestDiscover_FindsPagesAndSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", goodPage)
	writeFile(t, dir, "tutorials/paymaster/10.intro.md", goodPage)
	writeFile(t, dir, "tutorials/paymaster/flow.png", "png-bytes")

	pages, err := NewDiscovery(dir, nil).Discover()
	require.NoError(t, err)
	require.Len(t, pages, 3)

	sections := BySection(pages)
	assert.Len(t, sections[""], 1)
	assert.Len(t, sections["tutorials"], 2)

	var asset *Page
	for i := range pages {
		if pages[i].IsAsset {
			asset = &pages[i]
		}
	}
	require.NotNil(t, asset)
	assert.Equal(t, filepath.Join("tutorials", "paymaster", "flow.png"), asset.RelativePath)
}

func TestDiscover_MissingTitle_Fails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ndescription: No title here.\n---\nbody\n")

	_, err := NewDiscovery(dir, nil).Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a title")
}

func TestDiscover_MissingDescription_Fails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: Only a title\n---\nbody\n")

	_, err := NewDiscovery(dir, nil).Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a description")
}

func TestDiscover_CollectsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "---\ntitle: A\n---\nbody\n")
	writeFile(t, dir, "b.md", "---\ndescription: B\n---\nbody\n")

	_, err := NewDiscovery(dir, nil).Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.md")
	assert.Contains(t, err.Error(), "b.md")
}

func TestDiscover_SkipsHiddenAndIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", goodPage)
	writeFile(t, dir, ".hidden/secret.md", "not even valid front matter")
	writeFile(t, dir, "README.md", "no front matter either")

	pages, err := NewDiscovery(dir, []string{"readme.md"}).Discover()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "index.md", pages[0].RelativePath)
}

func TestDiscover_MissingDirectory_Fails(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope"), nil).Discover()
	require.Error(t, err)
}

func TestPage_SlugAndOutputPath(t *testing.T) {
	page := Page{RelativePath: filepath.Join("tutorials", "10.Erc20-Paymaster.md")}
	assert.Equal(t, "10-erc20-paymaster", page.Slug())
	assert.Equal(t, filepath.Join("tutorials", "10.Erc20-Paymaster")+".html", page.OutputPath())

	asset := Page{RelativePath: "img/flow.png", IsAsset: true}
	assert.Equal(t, "img/flow.png", asset.OutputPath())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Erc20 Paymaster":  "erc20-paymaster",
		"Héllo Wörld":      "hello-world",
		"  spaced  out  ":  "spaced-out",
		"already-a-slug":   "already-a-slug",
		"Multi___under":    "multi-under",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
