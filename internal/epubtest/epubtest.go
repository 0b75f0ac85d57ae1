// Package epubtest builds small epub archives for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Page is one spine page. Image names a file under OEBPS/image; empty means a text page.
type Page struct {
	Image string
	SVG   bool
	Body  string

	// Data replaces the generated image bytes.
	Data []byte

	// Unlisted leaves the image out of the manifest and the archive.
	Unlisted bool
}

type Nav struct {
	Label    string
	Src      string
	Children []Nav
}

type Book struct {
	Title   string
	Creator string
	Pages   []Page
	Nav     []Nav
	NoNCX   bool

	// NavDoc writes Nav as an EPUB3 navigation document.
	NavDoc bool

	// BadItemref adds a spine itemref with no manifest item.
	BadItemref bool

	// ExtraImages adds this many duplicate images to every image page.
	ExtraImages int
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// JPEG returns the bytes stored for every .jpg image.
func JPEG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// PNG returns the bytes stored for every .png image.
func PNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{G: 200, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// PageName is the href of the i-th (0-based) page.
func PageName(i int) string { return fmt.Sprintf("xhtml/p%03d.xhtml", i+1) }

func pageXHTML(p Page, extra int) string {
	var body strings.Builder
	body.WriteString(p.Body)
	if p.Image != "" {
		for n := 0; n <= extra; n++ {
			if p.SVG {
				fmt.Fprintf(&body, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 4 4"><image width="4" height="4" xlink:href="../image/%s"/></svg>`, p.Image)
			} else {
				fmt.Fprintf(&body, `<img src="../image/%s" alt="page"/>`, p.Image)
			}
		}
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>page</title></head><body>` + body.String() + `</body></html>`
}

func writeNav(sb *strings.Builder, navs []Nav, order *int) {
	for _, n := range navs {
		*order++
		fmt.Fprintf(sb, `<navPoint id="np%d" playOrder="%d"><navLabel><text>%s</text></navLabel><content src="%s"/>`, *order, *order, n.Label, n.Src)
		writeNav(sb, n.Children, order)
		sb.WriteString("</navPoint>\n")
	}
}

func writeNavList(sb *strings.Builder, navs []Nav) {
	sb.WriteString("<ol>")
	for _, n := range navs {
		fmt.Fprintf(sb, `<li><a href="%s">%s</a>`, n.Src, n.Label)
		if len(n.Children) > 0 {
			writeNavList(sb, n.Children)
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</ol>")
}

// Write builds the epub in dir and returns its path.
func Write(t testing.TB, dir, name string, f Book) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	add("mimetype", []byte("application/epub+zip"))
	add("META-INF/container.xml", []byte(containerXML))

	var manifest, spine strings.Builder
	images := map[string]bool{}
	for i, p := range f.Pages {
		fmt.Fprintf(&manifest, `<item id="p%d" href="%s" media-type="application/xhtml+xml"/>`+"\n", i+1, PageName(i))
		fmt.Fprintf(&spine, `<itemref idref="p%d"/>`+"\n", i+1)
		add("OEBPS/"+PageName(i), []byte(pageXHTML(p, f.ExtraImages)))
		if p.Image != "" && !p.Unlisted && !images[p.Image] {
			images[p.Image] = true
			mediaType, data := "image/jpeg", JPEG(t)
			if strings.HasSuffix(p.Image, ".png") {
				mediaType, data = "image/png", PNG(t)
			}
			if p.Data != nil {
				data = p.Data
			}
			fmt.Fprintf(&manifest, `<item id="img%d" href="image/%s" media-type="%s"/>`+"\n", i+1, p.Image, mediaType)
			add("OEBPS/image/"+p.Image, data)
		}
	}
	if !f.NoNCX {
		manifest.WriteString(`<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>` + "\n")
		var nav strings.Builder
		order := 0
		writeNav(&nav, f.Nav, &order)
		add("OEBPS/toc.ncx", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
<head><meta name="dtb:uid" content="id"/></head>
<docTitle><text>`+f.Title+`</text></docTitle>
<navMap>
`+nav.String()+`</navMap>
</ncx>
`))
	}

	if f.NavDoc {
		manifest.WriteString(`<item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
		var nav strings.Builder
		writeNavList(&nav, f.Nav)
		add("OEBPS/nav.xhtml", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops"><head><title>nav</title></head><body>
<nav epub:type="landmarks"><ol><li><a href="xhtml/p001.xhtml">Landmark</a></li></ol></nav>
<nav epub:type="toc">`+nav.String()+`</nav>
</body></html>
`))
	}
	if f.BadItemref {
		spine.WriteString(`<itemref idref="missing"/>` + "\n")
	}

	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>%s</dc:title>
<dc:creator>%s</dc:creator>
<dc:language>ja</dc:language>
<dc:identifier id="uid">urn:uuid:fixture</dc:identifier>
</metadata>
<manifest>
%s</manifest>
<spine toc="ncx">
%s</spine>
</package>
`, f.Title, f.Creator, manifest.String(), spine.String())
	add("OEBPS/content.opf", []byte(opf))
	require.NoError(t, zw.Close())

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}
