package importer

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/rsilvagit/jobboard/internal/model"
)

// Selectors locate posting fields in a search results page. Title and
// Location are looked up inside each Item. Link defaults to the first
// anchor of the item.
type Selectors struct {
	Item     string
	Title    string
	Company  string
	Location string
	Link     string
}

// HTMLSource scrapes one search results page with CSS selectors.
type HTMLSource struct {
	name      string
	searchURL *url.URL
	sel       Selectors
	client    Doer
}

func NewHTMLSource(name, searchURL string, sel Selectors, client Doer) (*HTMLSource, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: invalid search URL", name)
	}
	if sel.Link == "" {
		sel.Link = "a"
	}
	return &HTMLSource{name: name, searchURL: u, sel: sel, client: client}, nil
}

func (s *HTMLSource) Name() string {
	return s.name
}

func (s *HTMLSource) Fetch(ctx context.Context) ([]model.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: building request", s.name)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: executing request", s.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("%s: unexpected status %d", s.name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: parsing HTML", s.name)
	}

	var jobs []model.Job
	doc.Find(s.sel.Item).Each(func(_ int, item *goquery.Selection) {
		title := clean(item.Find(s.sel.Title).Text())
		if title == "" {
			return
		}
		loc := clean(item.Find(s.sel.Location).Text())
		link, _ := item.Find(s.sel.Link).First().Attr("href")

		jobs = append(jobs, model.Job{
			Title:    title,
			Company:  clean(item.Find(s.sel.Company).Text()),
			Location: loc,
			IsWFH:    isRemote(loc),
			ApplyURL: s.resolve(link),
			Type:     classify(title),
			Tags:     []string{s.name},
		})
	})
	return jobs, nil
}

func (s *HTMLSource) resolve(link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return s.searchURL.ResolveReference(ref).String()
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, terms ...string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func isRemote(location string) bool {
	return containsAny(location, "remote", "remoto", "work from home", "wfh")
}

func classify(title string) model.Type {
	if containsAny(title, "intern", "estágio", "estagio", "apprentice") {
		return model.TypeInternship
	}
	return model.TypeJob
}
