package epub

import (
	"fmt"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/glamour"
)

// Markdown converts every spine page to markdown and writes them to w in
// reading order, separated by a horizontal rule.
func (b *Book) Markdown(w io.Writer) error {
	for i, p := range b.Pages() {
		md, err := pageMarkdown(p)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n\n---\n\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(md); err != nil {
			return err
		}
	}
	return nil
}

func pageMarkdown(p Page) ([]byte, error) {
	r, err := p.Item.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.Href(), err)
	}
	defer r.Close()
	md, err := htmltomarkdown.ConvertReader(r)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", p.Href(), err)
	}
	return md, nil
}

// Render formats markdown for the terminal with the named glamour style.
func Render(md []byte, style string) ([]byte, error) {
	return glamour.RenderBytes(md, style)
}
