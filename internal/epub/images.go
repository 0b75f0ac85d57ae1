package epub

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	goreader "github.com/taylorskalyo/goreader/epub"
	"go.uber.org/zap"
)

// JPEGQuality is used when a PNG page is re-encoded.
const JPEGQuality = 70

type ExtractOptions struct {
	// Dir is the output directory. Empty means the epub path without its extension.
	Dir string

	// KeepPNG writes PNG pages as NNN.png instead of converting them to JPEG.
	KeepPNG bool

	// DeleteExisting removes Dir before extracting instead of failing.
	DeleteExisting bool
}

// OutputDir is the default image directory for the epub at p.
func OutputDir(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}

// PageImage returns the href, relative to the package document, of the single
// image a page shows. SVG wrapped pages are checked first.
func (b *Book) PageImage(p Page) (string, error) {
	doc, err := queryItem(p.Item)
	if err != nil {
		return "", err
	}

	images, attrs := doc.Find("svg image"), []string{"href", "src"}
	if images.Length() == 0 {
		images, attrs = doc.Find("img"), []string{"src", "href"}
	}
	if images.Length() != 1 {
		return "", fmt.Errorf("%s has %d images: %w", p.Href(), images.Length(), ErrImageCount)
	}
	for _, attr := range attrs {
		if ref, ok := images.Attr(attr); ok && ref != "" {
			return resolve(p.Href(), ref), nil
		}
	}
	return "", fmt.Errorf("%s: image has no source attribute", p.Href())
}

// ExtractImages writes one image per spine page into the output directory,
// named by page number.
func (b *Book) ExtractImages(opts ExtractOptions) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = OutputDir(b.path)
	}
	if _, err := os.Stat(dir); err == nil {
		if !opts.DeleteExisting {
			return "", fmt.Errorf("%s: %w", dir, ErrOutputExists)
		}
		if err := os.RemoveAll(dir); err != nil {
			return "", err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	// Resolve every page image before touching the file system.
	pages := b.Pages()
	sources := make([]*goreader.Item, len(pages))
	for i, p := range pages {
		src, err := b.PageImage(p)
		if err != nil {
			return "", err
		}
		if sources[i], err = b.item(src); err != nil {
			return "", fmt.Errorf("%s: %w", p.Href(), err)
		}
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", err
	}
	for i, p := range pages {
		dest, err := writeImage(sources[i], dir, p.Number, opts.KeepPNG)
		if err != nil {
			// A partial directory would block the next run with ErrOutputExists.
			os.RemoveAll(dir)
			return "", err
		}
		b.logger.Info(sources[i].HREF+" -> "+filepath.Base(dest), zap.Int("page", p.Number))
	}
	return dir, nil
}

func writeImage(it *goreader.Item, dir string, number int, keepPNG bool) (string, error) {
	r, err := it.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", it.HREF, err)
	}
	defer r.Close()

	isPNG := strings.EqualFold(path.Ext(it.HREF), ".png")
	ext := ".jpg"
	if isPNG && keepPNG {
		ext = ".png"
	}
	dest := filepath.Join(dir, fmt.Sprintf("%03d%s", number, ext))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if isPNG && !keepPNG {
		err = pngToJPEG(out, r)
	} else {
		_, err = io.Copy(out, r)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

func pngToJPEG(w io.Writer, r io.Reader) error {
	img, err := png.Decode(r)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
}
