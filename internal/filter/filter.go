package filter

import (
	"github.com/rsilvagit/jobboard/internal/model"
)

// Options holds the listing filter. An empty Type means "no filter".
type Options struct {
	Type model.Type
}

// FromQuery builds Options from a raw type parameter. Unknown values are
// dropped rather than rejected, so a bad parameter lists everything.
func FromQuery(raw string) Options {
	if raw == "" {
		return Options{}
	}
	t, err := model.ParseType(raw)
	if err != nil {
		return Options{}
	}
	return Options{Type: t}
}

// Apply filters a slice of jobs, returning only those that match.
func Apply(jobs []model.Job, opts Options) []model.Job {
	if opts.IsEmpty() {
		return jobs
	}

	var result []model.Job
	for _, j := range jobs {
		if opts.Match(j) {
			result = append(result, j)
		}
	}
	return result
}

// Match reports whether j satisfies every criterion.
func (o Options) Match(j model.Job) bool {
	if o.Type != "" && j.Type != o.Type {
		return false
	}
	return true
}

// Segment is the cache key segment for these options.
func (o Options) Segment() string {
	if o.Type == "" {
		return "all"
	}
	return string(o.Type)
}

func (o Options) IsEmpty() bool {
	return o.Type == ""
}
