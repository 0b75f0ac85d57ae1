package epub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	goreader "github.com/taylorskalyo/goreader/epub"
	"go.uber.org/zap"
)

const ncxMediaType = "application/x-dtbncx+xml"

// Section is one row of the table of contents.
type Section struct {
	PageXML   string `json:"page_xml"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
	Title     string `json:"section_title"`
}

// TOC reads the NCX navigation points, or the EPUB3 navigation document
// when there is no NCX, and turns them into page ranges. A book with neither
// has an empty table.
func (b *Book) TOC() ([]Section, error) {
	var points []Section
	var err error
	if ncx := b.itemByMediaType(ncxMediaType); ncx != nil {
		points, err = b.ncxPoints(ncx)
	} else {
		points, err = b.navPoints()
	}
	if err != nil {
		return nil, err
	}
	return tocTable(points, len(b.Pages())), nil
}

func (b *Book) ncxPoints(ncx *goreader.Item) ([]Section, error) {
	doc, err := queryItem(ncx)
	if err != nil {
		return nil, err
	}
	numbers := b.pageNumbers()
	var points []Section
	doc.Find("navpoint").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Find("content").First().Attr("src")
		if !ok {
			return
		}
		if p, ok := b.point(numbers, ncx.HREF, src, s.Find("navlabel text").First().Text()); ok {
			points = append(points, p)
		}
	})
	return points, nil
}

func (b *Book) navPoints() ([]Section, error) {
	pkg, err := b.packageDoc()
	if err != nil {
		return nil, err
	}
	href := pkg.navHref()
	if href == "" {
		b.logger.Debug("no ncx or nav document in manifest")
		return nil, nil
	}
	it, err := b.item(href)
	if err != nil {
		return nil, err
	}
	doc, err := queryItem(it)
	if err != nil {
		return nil, err
	}

	navs := doc.Find("nav").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("epub:type", "") == "toc"
	})
	if navs.Length() == 0 {
		navs = doc.Find("nav")
	}
	numbers := b.pageNumbers()
	var points []Section
	navs.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if p, ok := b.point(numbers, it.HREF, s.AttrOr("href", ""), s.Text()); ok {
			points = append(points, p)
		}
	})
	return points, nil
}

// point builds a section for a link found in the document at base. Links
// outside the spine are dropped.
func (b *Book) point(numbers map[string]int, base, src, title string) (Section, bool) {
	href := resolve(base, src)
	n, ok := numbers[href]
	if !ok {
		b.logger.Warn("toc entry points outside the spine", zap.String("src", src))
		return Section{}, false
	}
	return Section{PageXML: href, StartPage: n, Title: strings.TrimSpace(title)}, true
}

// tocTable orders points by start page, keeps the first point of each page and
// closes every range one page before the next one starts.
func tocTable(points []Section, lastPage int) []Section {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].StartPage < points[j].StartPage
	})
	table := []Section{}
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		if seen[p.StartPage] {
			continue
		}
		seen[p.StartPage] = true
		if n := len(table); n > 0 {
			table[n-1].EndPage = p.StartPage - 1
		}
		table = append(table, p)
	}
	if n := len(table); n > 0 {
		table[n-1].EndPage = lastPage
	}
	return table
}

// TOCMarkdown formats the table as a markdown table.
func TOCMarkdown(table []Section) string {
	var sb strings.Builder
	sb.WriteString("| Pages | Section |\n| --- | --- |\n")
	for _, s := range table {
		fmt.Fprintf(&sb, "| %03d-%03d | %s |\n", s.StartPage, s.EndPage, strings.ReplaceAll(s.Title, "|", `\|`))
	}
	return sb.String()
}
