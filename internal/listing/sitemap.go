package listing

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/cockroachdb/errors"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Sitemap renders every non-expired job as a sitemap entry pointing at
// {baseURL}/jobs/{slug}.
func (s *Service) Sitemap(ctx context.Context, baseURL string) ([]byte, error) {
	jobs, err := s.store.Active(ctx, s.now())
	if err != nil {
		return nil, s.storeFailure("sitemap", "", err)
	}

	base := strings.TrimRight(baseURL, "/")
	set := urlSet{NS: sitemapNS, URLs: make([]sitemapURL, 0, len(jobs))}
	for _, j := range jobs {
		if j.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + "/jobs/" + j.Slug,
			LastMod: j.PostedAt.UTC().Format("2006-01-02"),
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "listing: marshal sitemap")
	}
	return append([]byte(xml.Header), out...), nil
}
