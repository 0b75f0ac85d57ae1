package epub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twistedogic/epub-extractor/internal/epubtest"
)

func openFixture(t *testing.T, f epubtest.Book) *Book {
	t.Helper()
	p := epubtest.Write(t, t.TempDir(), "book.epub", f)
	b, err := Open(p, nil)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}
