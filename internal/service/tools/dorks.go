package tools

import (
	"fmt"
	"net/url"
	"strings"
)

type DorkLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// GenerateDorks builds Google search links that narrow results to the
// places where a person or organization usually leaves traces.
func GenerateDorks(target string) []DorkLink {
	query := strings.TrimSpace(target)

	dorks := []struct {
		platform string
		dork     string
	}{
		{"Facebook", fmt.Sprintf(`site:facebook.com "%s"`, query)},
		{"LinkedIn", fmt.Sprintf(`site:linkedin.com/in/ "%s"`, query)},
		{"Instagram", fmt.Sprintf(`site:instagram.com "%s"`, query)},
		{"Twitter/X", fmt.Sprintf(`site:twitter.com "%s"`, query)},
		{"General OSINT", fmt.Sprintf(`"%s" (intext:"@gmail.com" OR intext:"@yahoo.com" OR intext:"@outlook.com")`, query)},
		{"Public Documents", fmt.Sprintf(`site:docs.google.com "%s"`, query)},
	}

	links := make([]DorkLink, 0, len(dorks))
	for _, d := range dorks {
		links = append(links, DorkLink{
			Platform: d.platform,
			URL:      "https://www.google.com/search?q=" + url.QueryEscape(d.dork),
		})
	}
	return links
}
