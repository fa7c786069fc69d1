// Package importer pulls postings from external job boards into the job
// store.
package importer

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/rsilvagit/jobboard/internal/model"
)

// Source defines the contract every job board must satisfy.
type Source interface {
	// Name returns a short identifier, also used as a tag on imported jobs.
	Name() string

	// Fetch returns the postings currently listed by the board.
	Fetch(ctx context.Context) ([]model.Job, error)
}

// Doer executes HTTP requests. *httpclient.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var builtin = map[string]func(query, location string) (string, Selectors){
	"gupy": func(query, _ string) (string, Selectors) {
		return "https://portal.gupy.io/job-search/term=" + url.QueryEscape(query), Selectors{
			Item:     "[data-testid='job-list-item']",
			Title:    "h2",
			Company:  "[data-testid='company-name']",
			Location: "[data-testid='job-location']",
		}
	},
	"indeed": func(query, location string) (string, Selectors) {
		params := url.Values{"q": {query}, "l": {location}}
		return "https://www.indeed.com/jobs?" + params.Encode(), Selectors{
			Item:     ".job_seen_beacon",
			Title:    ".jobTitle span",
			Company:  ".companyName",
			Location: ".companyLocation",
		}
	},
	"linkedin": func(query, location string) (string, Selectors) {
		params := url.Values{"keywords": {query}, "location": {location}}
		return "https://www.linkedin.com/jobs/search?" + params.Encode(), Selectors{
			Item:     ".base-card",
			Title:    ".base-search-card__title",
			Company:  ".base-search-card__subtitle",
			Location: ".job-search-card__location",
		}
	},
}

// Names lists the built-in boards in stable order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry builds the named built-in sources sharing one client. No names
// selects every built-in board.
func Registry(names []string, query, location string, client Doer) ([]Source, error) {
	if len(names) == 0 {
		names = Names()
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		build, ok := builtin[name]
		if !ok {
			return nil, errors.Newf("importer: unknown source %q (known: %v)", name, Names())
		}
		searchURL, sel := build(query, location)
		src, err := NewHTMLSource(name, searchURL, sel, client)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
