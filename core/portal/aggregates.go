package portal

import (
	"context"

	"github.com/trezcool/academia/core/analytics"
)

// GetAggregates computes kind for the student, serving it from the cache when possible.
// The cache generation is read before computing: a write committed meanwhile invalidates
// the generation, so the result stored here is never served after that write.
// Cache failures degrade to a fresh computation.
func (p *Portal) GetAggregates(ctx context.Context, token, studentID string, kind analytics.Kind, opts analytics.Options) (analytics.Result, error) {
	caller, err := p.gate.Authorize(ctx, token, OpGetAggregates, studentID)
	if err != nil {
		return analytics.Result{}, err
	}
	if !analytics.Cacheable(kind) {
		return p.engine.Compute(ctx, studentID, kind, opts)
	}

	gen, err := p.cache.Generation(ctx, studentID)
	if err != nil {
		p.logger.Warn("reading aggregate cache generation", err, caller.Account)
		return p.engine.Compute(ctx, studentID, kind, opts)
	}

	key := analytics.CacheKey(kind, opts)
	var res analytics.Result
	hit, err := p.cache.Get(ctx, studentID, gen, key, &res)
	if err != nil {
		p.logger.Warn("reading cached aggregate", err, caller.Account)
	}
	if hit {
		return res, nil
	}

	if res, err = p.engine.Compute(ctx, studentID, kind, opts); err != nil {
		return analytics.Result{}, err
	}
	if err = p.cache.Set(ctx, studentID, gen, key, res); err != nil {
		p.logger.Warn("caching aggregate", err, caller.Account)
	}
	return res, nil
}

func (p *Portal) GetClassOverview(ctx context.Context, token string) (analytics.Overview, error) {
	if _, err := p.gate.Authorize(ctx, token, OpGetClassOverview); err != nil {
		return analytics.Overview{}, err
	}
	return p.engine.ClassOverview(ctx)
}
