package codeimport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_FindsDirectiveInFencedBlock(t *testing.T) {
	body := []byte("intro\n\n```solidity\n:code-import{filePath=\"contracts/paymasters/GeneralPaymaster.sol\"}\n```\n")

	directives, err := Scan("tutorials/paymaster.md", body)
	require.NoError(t, err)
	require.Len(t, directives, 1)

	d := directives[0]
	assert.Equal(t, "tutorials/paymaster.md", d.PagePath)
	assert.Equal(t, "contracts", d.Repo)
	assert.Equal(t, "paymasters/GeneralPaymaster.sol", d.Path)
	assert.Zero(t, d.StartLine)
	assert.Equal(t, 4, d.Line)
}

func TestScan_ParsesLineRange(t *testing.T) {
	body := []byte("```ts\n:code-import{filePath=\"scripts/deploy.ts:3-12\"}\n```\n")

	directives, err := Scan("p.md", body)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, "scripts", directives[0].Repo)
	assert.Equal(t, "deploy.ts", directives[0].Path)
	assert.Equal(t, 3, directives[0].StartLine)
	assert.Equal(t, 12, directives[0].EndLine)
}

func TestScan_InvalidRange_Fails(t *testing.T) {
	body := []byte("```ts\n:code-import{filePath=\"scripts/deploy.ts:9-3\"}\n```\n")

	_, err := Scan("p.md", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid line range")
}

func TestScan_MissingRepositoryPrefix_Fails(t *testing.T) {
	body := []byte("```ts\n:code-import{filePath=\"deploy.ts\"}\n```\n")

	_, err := Scan("p.md", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<repository>/<path>")
}

func TestScan_PathTraversal_Fails(t *testing.T) {
	body := []byte("```ts\n:code-import{filePath=\"scripts/../../etc/passwd\"}\n```\n")

	_, err := Scan("p.md", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traverse")
}

func TestScan_DoubleDotsInFilename_OK(t *testing.T) {
	body := []byte("```md\n:code-import{filePath=\"docs/notes..v2.md\"}\n```\n")

	directives, err := Scan("p.md", body)
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, "docs", directives[0].Repo)
	assert.Equal(t, "notes..v2.md", directives[0].Path)
}

func TestScan_BareParentSegment_Fails(t *testing.T) {
	body := []byte("```ts\n:code-import{filePath=\"scripts/..\"}\n```\n")

	_, err := Scan("p.md", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traverse")
}

func TestScan_DirectiveOutsideFence_Fails(t *testing.T) {
	body := []byte("Some text :code-import{filePath=\"scripts/deploy.ts\"} inline.\n")

	_, err := Scan("p.md", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside a fenced code block")
}

func TestScan_NoDirectives_Empty(t *testing.T) {
	directives, err := Scan("p.md", []byte("```bash\nnpm install\n```\n"))
	require.NoError(t, err)
	assert.Empty(t, directives)
}

func newRepoFixture(t *testing.T) map[string]string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "paymasters"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "paymasters", "GeneralPaymaster.sol"),
		[]byte("line1\nline2\nline3\nline4\nline5\n"), 0o644))
	return map[string]string{"contracts": root}
}

func TestVerify_ExistingPath_OK(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	err := resolver.Verify([]Directive{{Repo: "contracts", Path: "paymasters/GeneralPaymaster.sol", Raw: "x"}})
	require.NoError(t, err)
}

func TestVerify_DanglingPath_Fails(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	err := resolver.Verify([]Directive{
		{PagePath: "a.md", Line: 3, Repo: "contracts", Path: "paymasters/Missing.sol", Raw: "contracts/paymasters/Missing.sol"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Contains(t, err.Error(), "a.md")
}

func TestVerify_UnknownRepository_Fails(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	err := resolver.Verify([]Directive{{Repo: "nope", Path: "x.sol", Raw: "nope/x.sol"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownRepository))
}

func TestResolve_FullFile(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	out, err := resolver.Resolve(Directive{Repo: "contracts", Path: "paymasters/GeneralPaymaster.sol"})
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\nline3\nline4\nline5\n", string(out))
}

func TestResolve_LineRange(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	out, err := resolver.Resolve(Directive{Repo: "contracts", Path: "paymasters/GeneralPaymaster.sol", StartLine: 2, EndLine: 4})
	require.NoError(t, err)
	assert.Equal(t, "line2\nline3\nline4\n", string(out))
}

func TestResolve_RangeBeyondFile_Fails(t *testing.T) {
	resolver := NewResolver(newRepoFixture(t))

	_, err := resolver.Resolve(Directive{Repo: "contracts", Path: "paymasters/GeneralPaymaster.sol", StartLine: 40, EndLine: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds file length")
}
