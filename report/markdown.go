package report

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/signalbox/signalbox/analysis"
)

// Markdown renders the HTML report and converts it to GitHub-flavored
// Markdown for terminals, READMEs, and issue comments.
func (g *Generator) Markdown(run *analysis.Run) (string, error) {
	html, err := g.HTML(run)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting report to markdown: %w", err)
	}
	return markdown, nil
}
