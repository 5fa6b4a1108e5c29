package templates

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFragment(t *testing.T, root, category, name, content string) {
	t.Helper()
	dir := filepath.Join(root, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileStore(t *testing.T) {
	t.Run("serves fragments from disk", func(t *testing.T) {
		root := t.TempDir()
		writeFragment(t, root, CategoryContracts, "erc20", "contract {{TokenName}} {}")

		store, err := NewFileStore(root, nil, FileStoreOptions{})
		require.NoError(t, err)
		defer store.Close()

		content, err := store.Fragment(CategoryContracts, "erc20")
		require.NoError(t, err)
		assert.Equal(t, "contract {{TokenName}} {}", content)
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir(), nil, FileStoreOptions{})
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Fragment("secrets", "key")
		assert.Error(t, err)
	})

	t.Run("rejects path traversal in names", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir(), nil, FileStoreOptions{})
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Fragment(CategoryContracts, "../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("missing fragment is an error", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir(), nil, FileStoreOptions{})
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Fragment(CategoryContracts, "nope")
		assert.Error(t, err)
	})

	t.Run("caches repeated reads", func(t *testing.T) {
		root := t.TempDir()
		writeFragment(t, root, CategoryFrontend, "index", "<html></html>")

		store, err := NewFileStore(root, nil, FileStoreOptions{})
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Fragment(CategoryFrontend, "index")
		require.NoError(t, err)

		// Remove the backing file; the cached copy still serves.
		require.NoError(t, os.Remove(filepath.Join(root, CategoryFrontend, "index")))
		content, err := store.Fragment(CategoryFrontend, "index")
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", content)
	})

	t.Run("watcher invalidates cache on change", func(t *testing.T) {
		root := t.TempDir()
		writeFragment(t, root, CategoryContracts, "erc20", "v1")

		store, err := NewFileStore(root, nil, FileStoreOptions{Watch: true})
		require.NoError(t, err)
		defer store.Close()

		content, err := store.Fragment(CategoryContracts, "erc20")
		require.NoError(t, err)
		require.Equal(t, "v1", content)

		writeFragment(t, root, CategoryContracts, "erc20", "v2")

		// The watcher purges asynchronously.
		assert.Eventually(t, func() bool {
			content, err := store.Fragment(CategoryContracts, "erc20")
			return err == nil && content == "v2"
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	t.Run("evm token project", func(t *testing.T) {
		tree, ok := r.Lookup("token", "ethereum")
		require.True(t, ok)
		assert.Contains(t, tree, "contracts")
		assert.Contains(t, tree, "hardhat.config.js")
	})

	t.Run("polygon shares the evm template", func(t *testing.T) {
		tree, ok := r.Lookup("token", "polygon")
		require.True(t, ok)
		assert.Contains(t, tree, "hardhat.config.js")
	})

	t.Run("solana program project", func(t *testing.T) {
		tree, ok := r.Lookup("program", "solana")
		require.True(t, ok)
		assert.Contains(t, tree, "Anchor.toml")
	})

	t.Run("unknown combination misses", func(t *testing.T) {
		_, ok := r.Lookup("oracle", "frobchain")
		assert.False(t, ok)
	})
}

func TestDefaultBindings(t *testing.T) {
	t.Run("multi-word name derives initials", func(t *testing.T) {
		b := DefaultBindings("Super Cool Token", "ethereum", "sepolia", nil)
		assert.Equal(t, "SCT", b["TokenSymbol"])
		assert.Equal(t, "SuperCoolToken", b["ProjectName"])
		assert.Equal(t, "super-cool-token", b["ProjectSlug"])
		assert.Equal(t, "sepolia", b["Network"])
	})

	t.Run("single-word name takes a prefix", func(t *testing.T) {
		b := DefaultBindings("Moonbeam", "polygon", "mainnet", nil)
		assert.Equal(t, "MOO", b["TokenSymbol"])
	})

	t.Run("empty name falls back", func(t *testing.T) {
		b := DefaultBindings("", "ethereum", "mainnet", nil)
		assert.Equal(t, "MyProject", b["ProjectName"])
	})

	t.Run("extra bindings win", func(t *testing.T) {
		b := DefaultBindings("Thing", "ethereum", "mainnet", map[string]string{"TokenSymbol": "THNG"})
		assert.Equal(t, "THNG", b["TokenSymbol"])
	})
}
