// Package epub reads the parts of an EPUB archive that the extractor commands
// need: spine pages, the NCX table of contents, page images and metadata.
package epub

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	goreader "github.com/taylorskalyo/goreader/epub"
	"go.uber.org/zap"
)

var (
	ErrNotEPUB      = errors.New("not an epub file")
	ErrNoRootfile   = errors.New("epub has no rootfile")
	ErrItemNotFound = errors.New("manifest item not found")
	ErrImageCount   = errors.New("page must reference exactly one image")
	ErrOutputExists = errors.New("output directory already exists")
)

// Page is a spine entry. Number starts at 1.
type Page struct {
	Number int
	Item   *goreader.Item
}

// Href returns the page path relative to the package document.
func (p Page) Href() string { return p.Item.HREF }

type Book struct {
	path   string
	rc     *goreader.ReadCloser
	root   *goreader.Rootfile
	pkg    *packageDoc
	logger *zap.Logger
}

// Open opens the EPUB at path and selects its first rootfile.
func Open(p string, logger *zap.Logger) (*Book, error) {
	if !strings.HasSuffix(p, ".epub") {
		return nil, fmt.Errorf("%s: %w", p, ErrNotEPUB)
	}
	if _, err := os.Stat(p); err != nil {
		return nil, err
	}
	rc, err := goreader.OpenReader(p)
	if errors.Is(err, goreader.ErrBadItemref) {
		return nil, fmt.Errorf("open %s: spine: %w", p, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, fmt.Errorf("%s: %w", p, ErrNoRootfile)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		path:   p,
		rc:     rc,
		root:   rc.Rootfiles[0],
		logger: logger.With(zap.String("epub", p)),
	}, nil
}

func (b *Book) Close() { b.rc.Close() }

func (b *Book) Path() string { return b.path }

// Pages returns the spine items in reading order. Open has already
// rejected itemrefs without a manifest item.
func (b *Book) Pages() []Page {
	refs := b.root.Spine.Itemrefs
	pages := make([]Page, 0, len(refs))
	for i, ref := range refs {
		pages = append(pages, Page{Number: i + 1, Item: ref.Item})
	}
	return pages
}

// pageNumbers maps a page href, relative to the package document, to its page number.
func (b *Book) pageNumbers() map[string]int {
	pages := b.Pages()
	m := make(map[string]int, len(pages))
	for _, p := range pages {
		m[path.Clean(p.Href())] = p.Number
	}
	return m
}

// item looks up a manifest item by its href relative to the package document.
func (b *Book) item(href string) (*goreader.Item, error) {
	href = path.Clean(href)
	for i := range b.root.Manifest.Items {
		it := &b.root.Manifest.Items[i]
		if path.Clean(it.HREF) == href {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", href, ErrItemNotFound)
}

func (b *Book) itemByMediaType(mediaType string) *goreader.Item {
	for i := range b.root.Manifest.Items {
		if b.root.Manifest.Items[i].MediaType == mediaType {
			return &b.root.Manifest.Items[i]
		}
	}
	return nil
}

// queryItem parses a manifest item as HTML.
func queryItem(it *goreader.Item) (*goquery.Document, error) {
	r, err := it.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", it.HREF, err)
	}
	defer r.Close()
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", it.HREF, err)
	}
	return doc, nil
}

// resolve joins a reference found inside the document at base onto base's directory
// and drops any fragment.
func resolve(base, ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}
	return path.Join(path.Dir(base), ref)
}
