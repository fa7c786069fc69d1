package importer

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rsilvagit/jobboard/internal/filter"
	"github.com/rsilvagit/jobboard/internal/model"
)

// Creator persists a batch of postings. *listing.Service satisfies it.
type Creator interface {
	CreateMany(ctx context.Context, jobs []model.Job) (created, skipped int, err error)
}

// Result summarizes one import run.
type Result struct {
	Fetched    int
	Duplicates int
	Created    int
	Skipped    int
	Failed     []string
}

// Importer fetches every source concurrently, drops postings already seen
// by this process, and hands the rest to a Creator.
type Importer struct {
	sources []Source
	dst     Creator
	filter  filter.Options
	log     *zap.Logger

	runMu sync.Mutex
	seen  map[string]struct{}
}

func New(dst Creator, sources []Source, opts filter.Options, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		sources: sources,
		dst:     dst,
		filter:  opts,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// Run performs one import. Runs are serialized. A failing source is logged
// and skipped; Run only fails when every source failed or the store did.
func (im *Importer) Run(ctx context.Context) (Result, error) {
	im.runMu.Lock()
	defer im.runMu.Unlock()

	var res Result
	batches := make([][]model.Job, len(im.sources))
	errs := make([]error, len(im.sources))

	var wg sync.WaitGroup
	for i, src := range im.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batches[i], errs[i] = src.Fetch(ctx)
		}()
	}
	wg.Wait()

	var fresh []model.Job
	for i, src := range im.sources {
		if errs[i] != nil {
			im.log.Warn("source failed", zap.String("source", src.Name()), zap.Error(errs[i]))
			res.Failed = append(res.Failed, src.Name())
			continue
		}
		im.log.Info("source fetched", zap.String("source", src.Name()), zap.Int("jobs", len(batches[i])))
		for _, j := range batches[i] {
			res.Fetched++
			key := j.Key()
			if _, dup := im.seen[key]; dup {
				res.Duplicates++
				continue
			}
			im.seen[key] = struct{}{}
			fresh = append(fresh, j)
		}
	}

	if len(im.sources) > 0 && len(res.Failed) == len(im.sources) {
		return res, errors.Newf("importer: all %d sources failed", len(im.sources))
	}

	fresh = filter.Apply(fresh, im.filter)
	if len(fresh) == 0 {
		return res, nil
	}

	created, skipped, err := im.dst.CreateMany(ctx, fresh)
	res.Created, res.Skipped = created, skipped
	if err != nil {
		// Unsaved postings must be retried next run.
		for _, j := range fresh[created+skipped:] {
			delete(im.seen, j.Key())
		}
		return res, errors.Wrap(err, "importer: store batch")
	}

	im.log.Info("import finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("duplicates", res.Duplicates),
	)
	return res, nil
}
