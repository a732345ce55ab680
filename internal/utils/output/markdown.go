// internal/utils/output/markdown.go
package output

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/snip/internal/utils/url"
)

// ToMarkdown converts component HTML to GitHub-flavored markdown. Relative
// links are resolved against pageURL so the markdown stands alone.
func ToMarkdown(componentHTML, pageURL string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			resolved := urlutil.Resolve(pageURL, href)
			var titlePart string
			if title, hasTitle := selec.Attr("title"); hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", selec.Text(), resolved, titlePart)
			return &str
		},
	})

	keep := map[string]bool{"href": true, "src": true, "alt": true, "title": true}
	cleaned, err := StripAttributes(componentHTML, keep)
	if err != nil {
		return "", err
	}
	return converter.ConvertString(cleaned)
}
