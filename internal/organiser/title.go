package organiser

import (
	"strings"

	"github.com/adrg/frontmatter"
)

type frontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// titleFromFrontMatter returns the title field of a front matter block at
// the top of body, or "". The body itself is never altered.
func titleFromFrontMatter(body string) string {
	head := strings.TrimLeft(body, " \t\r\n")
	if !strings.HasPrefix(head, "---") && !strings.HasPrefix(head, "+++") {
		return ""
	}
	var fm frontMatter
	if _, err := frontmatter.Parse(strings.NewReader(body), &fm); err != nil {
		return ""
	}
	return strings.TrimSpace(fm.Title)
}
