package docload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	liberrors "legal-lab/errors"
)

func writeDocument(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), content, 0o644))
}

func TestLoad_Reads_Text_Document(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	writeDocument(t, dir, "lease", []byte("LEASE AGREEMENT\n\nThe tenant pays monthly.\n"))

	document, err := Load(dir, "lease")
	req.NoError(err)
	req.Equal("lease", document.Name)
	req.Equal("LEASE AGREEMENT\n\nThe tenant pays monthly.", document.Text)
}

func TestLoad_Missing_File(t *testing.T) {
	req := require.New(t)

	_, err := Load(t.TempDir(), "nope")
	req.Error(err)
	req.ErrorIs(err, os.ErrNotExist)
}

func TestLoad_Rejects_Empty_Document(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	writeDocument(t, dir, "empty", []byte("   \n \n"))

	_, err := Load(dir, "empty")
	req.ErrorIs(err, liberrors.ErrEmptyDocument)
}

func TestLoad_Rejects_Binary_Document(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	// PNG magic bytes, definitely not a contract
	writeDocument(t, dir, "image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01})

	_, err := Load(dir, "image")
	req.ErrorIs(err, liberrors.ErrNotTextDocument)
}
