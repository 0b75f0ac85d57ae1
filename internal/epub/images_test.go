package epub

import (
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twistedogic/epub-extractor/internal/epubtest"
)

func comicFixture() epubtest.Book {
	return epubtest.Book{
		Title: "Comic",
		Pages: []epubtest.Page{{Image: "i001.jpg", SVG: true}, {Image: "i002.png", SVG: true}, {Image: "i003.jpg"}},
	}
}

func TestExtractImages(t *testing.T) {
	b := openFixture(t, comicFixture())
	dir, err := b.ExtractImages(ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, OutputDir(b.Path()), dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Equal(t, []string{"001.jpg", "002.jpg", "003.jpg"}, names)

	got, err := os.ReadFile(filepath.Join(dir, "001.jpg"))
	require.NoError(t, err)
	require.Equal(t, epubtest.JPEG(t), got)

	f, err := os.Open(filepath.Join(dir, "002.jpg"))
	require.NoError(t, err)
	defer f.Close()
	_, err = jpeg.Decode(f)
	require.NoError(t, err, "png page must be converted")
}

func TestExtractImagesKeepPNG(t *testing.T) {
	b := openFixture(t, comicFixture())
	dir, err := b.ExtractImages(ExtractOptions{Dir: filepath.Join(t.TempDir(), "out"), KeepPNG: true})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "002.png"))
	require.NoFileExists(t, filepath.Join(dir, "002.jpg"))
}

func TestExtractImagesExistingDir(t *testing.T) {
	b := openFixture(t, comicFixture())
	dir := OutputDir(b.Path())
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), nil, 0o644))

	_, err := b.ExtractImages(ExtractOptions{})
	require.ErrorIs(t, err, ErrOutputExists)

	_, err = b.ExtractImages(ExtractOptions{DeleteExisting: true})
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(dir, "stale"))
	require.FileExists(t, filepath.Join(dir, "003.jpg"))
}

func TestExtractImagesRequiresOneImagePerPage(t *testing.T) {
	t.Run("text page", func(t *testing.T) {
		b := openFixture(t, epubtest.Book{Title: "Text", Pages: []epubtest.Page{{Image: "a.jpg"}, {Body: "<p>no image</p>"}}})
		_, err := b.ExtractImages(ExtractOptions{})
		require.ErrorIs(t, err, ErrImageCount)
		require.NoDirExists(t, OutputDir(b.Path()))
	})
	t.Run("two images", func(t *testing.T) {
		b := openFixture(t, epubtest.Book{Title: "Spread", ExtraImages: 1, Pages: []epubtest.Page{{Image: "a.jpg", SVG: true}}})
		_, err := b.ExtractImages(ExtractOptions{})
		require.ErrorIs(t, err, ErrImageCount)
	})
}

func TestPageImageResolvesRelativeToPage(t *testing.T) {
	b := openFixture(t, comicFixture())
	src, err := b.PageImage(b.Pages()[0])
	require.NoError(t, err)
	require.Equal(t, "image/i001.jpg", src)
}

func TestExtractImagesLeavesNoPartialOutput(t *testing.T) {
	t.Run("image missing from manifest", func(t *testing.T) {
		b := openFixture(t, epubtest.Book{
			Title: "Broken",
			Pages: []epubtest.Page{{Image: "a.jpg", SVG: true}, {Image: "missing.jpg", SVG: true, Unlisted: true}},
		})
		_, err := b.ExtractImages(ExtractOptions{})
		require.ErrorIs(t, err, ErrItemNotFound)
		require.NoDirExists(t, OutputDir(b.Path()))
	})
	t.Run("corrupt png", func(t *testing.T) {
		b := openFixture(t, epubtest.Book{
			Title: "Corrupt",
			Pages: []epubtest.Page{{Image: "a.jpg"}, {Image: "b.png", Data: []byte("not a png")}},
		})
		_, err := b.ExtractImages(ExtractOptions{})
		require.Error(t, err)
		require.NoDirExists(t, OutputDir(b.Path()))

		_, err = b.ExtractImages(ExtractOptions{KeepPNG: true})
		require.NoError(t, err, "a failed run must not block the next one")
	})
}
