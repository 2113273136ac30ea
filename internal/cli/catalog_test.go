package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/entitymap/pkg/catalog"
	"github.com/matzehuels/entitymap/pkg/errors"
)

func TestWriteClassTable(t *testing.T) {
	var buf bytes.Buffer
	cat := catalog.Builtin()
	writeClassTable(&buf, cat)

	out := buf.String()
	assert.Contains(t, out, "Class")
	assert.Contains(t, out, "Relations")
	for _, id := range cat.IDs() {
		assert.Contains(t, out, id)
	}
}

func TestWriteClass(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeClass(&buf, catalog.Builtin(), "shop.Customer"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "shop.Customer\n"))
	assert.Contains(t, out, "orders -> []Order")
	assert.Contains(t, out, "→ shop.Address")

	err := writeClass(&buf, catalog.Builtin(), "shop.Nope")
	assert.True(t, errors.Is(err, errors.ErrCodeClassNotFound))
}

func TestCatalogValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte(`
name = "tiny"

[[class]]
id = "a.One"
relation = [{ name = "two", target = "a.Two" }]

[[class]]
id = "a.Two"
`), 0o644))
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`
[[class]]
id = "a.One"
relation = [{ name = "two", target = "a.Missing" }]
`), 0o644))

	c := New(&bytes.Buffer{}, LogInfo)

	var out bytes.Buffer
	cmd := c.catalogValidateCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "2 classes")

	cmd = c.catalogValidateCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{bad})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidCatalog))
}
