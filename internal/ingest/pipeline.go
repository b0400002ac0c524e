// Package ingest bulk-loads forum resources into the store: reset, load,
// annotate with terms, unordered bulk insert, then index build.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forumdb/forumdb/internal/loader"
	"github.com/forumdb/forumdb/internal/models"
	"github.com/forumdb/forumdb/internal/store"
	"github.com/forumdb/forumdb/internal/terms"
	"github.com/forumdb/forumdb/pkg/logger"
	"github.com/forumdb/forumdb/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// Stage names used in results and metrics.
const (
	StageLoad     = "load"
	StageAnnotate = "annotate"
	StageInsert   = "insert"
	StageIndex    = "index"
)

// Result summarizes one job.
type Result struct {
	Collection string
	Loaded     int
	Inserted   int
	Rejected   int
	// FirstRejection is the store's message for the first rejected document.
	FirstRejection string
	Durations      map[string]time.Duration
}

// Report summarizes a run, with results in job order.
type Report struct {
	Results []Result
	Took    time.Duration
}

// Pipeline runs ingestion jobs against a store.
type Pipeline struct {
	store store.Store
	src   loader.Source
	log   *logger.Component
}

// New returns a pipeline reading resources from src. Callers are expected to
// have verified that src holds every resource before calling Run.
func New(st store.Store, src loader.Source) *Pipeline {
	return &Pipeline{store: st, src: src, log: logger.WithComponent("ingest")}
}

// Reset drops every collection of ResetCollections that exists.
func (p *Pipeline) Reset(ctx context.Context) error {
	names, err := p.store.CollectionNames(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}
	for _, c := range ResetCollections {
		if !existing[c] {
			continue
		}
		if err := p.store.Drop(ctx, c); err != nil {
			return err
		}
		p.log.Infof("dropped existing collection %s", c)
	}
	return nil
}

// Run resets the store and runs jobs concurrently. Jobs write to disjoint
// collections. The first fatal error cancels the remaining jobs; rejected
// documents inside a bulk insert are reported in the Result, not as errors.
func (p *Pipeline) Run(ctx context.Context, jobs ...Job) (*Report, error) {
	start := time.Now()
	if err := p.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := p.runJob(gctx, job)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Took: time.Since(start)}
	p.log.Infof("ingest complete in %.5f seconds", report.Took.Seconds())
	return report, nil
}

func (p *Pipeline) runJob(ctx context.Context, job Job) (Result, error) {
	res := Result{Collection: job.Collection, Durations: make(map[string]time.Duration)}

	st := time.Now()
	docs, err := loader.Load(ctx, p.src, job.Resource)
	if err != nil {
		return res, fmt.Errorf("load %s: %w", job.Resource, err)
	}
	res.Loaded = len(docs)
	p.stage(&res, StageLoad, st)
	p.log.Infof("reading %s took %.5f seconds (%d documents)", loader.FileName(job.Resource), res.Durations[StageLoad].Seconds(), res.Loaded)

	for _, idx := range job.Constraints {
		if err := p.store.CreateIndex(ctx, job.Collection, idx); err != nil {
			return res, err
		}
	}

	var batch []any
	if job.ExtractTerms {
		st = time.Now()
		batch = Annotate(docs)
		p.stage(&res, StageAnnotate, st)
		p.log.Infof("extracting terms for %s took %.5f seconds", job.Collection, res.Durations[StageAnnotate].Seconds())
	} else {
		batch = make([]any, len(docs))
		for i, d := range docs {
			batch[i] = d
		}
	}
	docs = nil

	st = time.Now()
	n, err := p.store.InsertMany(ctx, job.Collection, batch)
	// release the loaded documents before building indexes
	batch = nil
	var bulkErr *store.BulkError
	switch {
	case errors.As(err, &bulkErr):
		res.Rejected = len(bulkErr.Failures)
		if res.Rejected > 0 {
			res.FirstRejection = bulkErr.Failures[0].Message
		}
		p.log.Warnf("%v", bulkErr)
	case err != nil:
		return res, err
	}
	res.Inserted = n
	p.stage(&res, StageInsert, st)
	metrics.DocumentsInserted.WithLabelValues(job.Collection).Add(float64(res.Inserted))
	metrics.DocumentsRejected.WithLabelValues(job.Collection).Add(float64(res.Rejected))
	p.log.Infof("inserting %d %s documents took %.5f seconds", res.Inserted, job.Collection, res.Durations[StageInsert].Seconds())

	if len(job.Indexes) > 0 {
		st = time.Now()
		for _, idx := range job.Indexes {
			if err := p.store.CreateIndex(ctx, job.Collection, idx); err != nil {
				return res, err
			}
		}
		p.stage(&res, StageIndex, st)
		p.log.Infof("creating %s indexes took %.5f seconds", job.Collection, res.Durations[StageIndex].Seconds())
	}
	return res, nil
}

func (p *Pipeline) stage(res *Result, stage string, start time.Time) {
	d := time.Since(start)
	res.Durations[stage] = d
	metrics.StageDuration.WithLabelValues(res.Collection, stage).Observe(d.Seconds())
}

// Annotate attaches a "terms" field to every document whose Title and Body
// yield at least one term, and returns the documents ready for InsertMany.
func Annotate(docs []bson.D) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		raw := models.Raw(d)
		if t := terms.Extract(raw); len(t) > 0 {
			raw = raw.With("terms", t)
		}
		out[i] = bson.D(raw)
	}
	return out
}
