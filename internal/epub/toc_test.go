package epub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twistedogic/epub-extractor/internal/epubtest"
)

func TestTOC(t *testing.T) {
	b := openFixture(t, epubtest.Book{
		Title: "TOC",
		Pages: []epubtest.Page{{Image: "1.jpg"}, {Image: "2.jpg"}, {Image: "3.jpg"}, {Image: "4.jpg"}},
		Nav:   []epubtest.Nav{
			{Label: "Cover", Src: "xhtml/p001.xhtml"},
			{Label: "Chapter 1", Src: "xhtml/p002.xhtml", Children: []epubtest.Nav{
				{Label: "Section 1.1", Src: "xhtml/p002.xhtml#s1"},
			}},
			{Label: "Chapter 2", Src: "xhtml/p004.xhtml"},
			{Label: "Afterword", Src: "xhtml/missing.xhtml"},
		},
	})
	table, err := b.TOC()
	require.NoError(t, err)
	require.Equal(t, []Section{
		{PageXML: "xhtml/p001.xhtml", StartPage: 1, EndPage: 1, Title: "Cover"},
		{PageXML: "xhtml/p002.xhtml", StartPage: 2, EndPage: 3, Title: "Chapter 1"},
		{PageXML: "xhtml/p004.xhtml", StartPage: 4, EndPage: 4, Title: "Chapter 2"},
	}, table)
}

func TestTOCWithoutNCX(t *testing.T) {
	b := openFixture(t, epubtest.Book{Title: "Bare", NoNCX: true, Pages: []epubtest.Page{{Image: "1.jpg"}}})
	table, err := b.TOC()
	require.NoError(t, err)
	require.Empty(t, table)
}

func TestTOCFromNavDocument(t *testing.T) {
	b := openFixture(t, epubtest.Book{
		Title:  "EPUB3",
		NoNCX:  true,
		NavDoc: true,
		Pages:  []epubtest.Page{{Image: "1.jpg"}, {Image: "2.jpg"}, {Image: "3.jpg"}},
		Nav: []epubtest.Nav{
			{Label: "Cover", Src: "xhtml/p001.xhtml"},
			{Label: "Chapter 1", Src: "xhtml/p002.xhtml", Children: []epubtest.Nav{
				{Label: "Section 1.1", Src: "xhtml/p002.xhtml#s1"},
			}},
		},
	})
	table, err := b.TOC()
	require.NoError(t, err)
	require.Equal(t, []Section{
		{PageXML: "xhtml/p001.xhtml", StartPage: 1, EndPage: 1, Title: "Cover"},
		{PageXML: "xhtml/p002.xhtml", StartPage: 2, EndPage: 3, Title: "Chapter 1"},
	}, table)
}

func TestTOCTable(t *testing.T) {
	cases := []struct {
		name   string
		points []Section
		last   int
		want   []Section
	}{
		{name: "empty", last: 5, want: []Section{}},
		{
			name:   "unsorted",
			points: []Section{{StartPage: 7, Title: "b"}, {StartPage: 3, Title: "a"}},
			last:   10,
			want:   []Section{{StartPage: 3, EndPage: 6, Title: "a"}, {StartPage: 7, EndPage: 10, Title: "b"}},
		},
		{
			name:   "duplicate start keeps first",
			points: []Section{{StartPage: 1, Title: "x"}, {StartPage: 1, Title: "y"}, {StartPage: 2, Title: "z"}},
			last:   2,
			want:   []Section{{StartPage: 1, EndPage: 1, Title: "x"}, {StartPage: 2, EndPage: 2, Title: "z"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tocTable(tc.points, tc.last))
		})
	}
}

func TestTOCMarkdown(t *testing.T) {
	md := TOCMarkdown([]Section{{StartPage: 1, EndPage: 12, Title: "A|B"}})
	require.Contains(t, md, `| 001-012 | A\|B |`)
}
