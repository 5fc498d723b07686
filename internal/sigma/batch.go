package sigma

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TranslateBatch translates texts with at most limit concurrent workers
// (limit <= 0 means one per input) and returns results in input order. It
// stops early and returns ctx.Err() when ctx is cancelled.
func TranslateBatch(ctx context.Context, t *Translator, texts []string, limit int) ([]Result, error) {
	if t == nil {
		t = defaultTranslator
	}
	results := make([]Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, text := range texts {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = t.Translate(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
