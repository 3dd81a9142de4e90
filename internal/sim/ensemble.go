package sim

import (
	"context"

	"github.com/san-kum/orbitsim/internal/nbody"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulations of the same size side by side. Run
// k uses time tag base+k, so every member starts from a different disk.
type Ensemble struct {
	Bodies     int
	Params     nbody.Params
	Runs       int
	NewBackend func() nbody.Backend
	// NewMetrics builds a fresh metric set per member; may be nil.
	NewMetrics func() []Metric
	Energy     EnergyFunc
	// Limit caps concurrent members; 0 means no limit.
	Limit int
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.Runs)

	g, ctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}

	for k := 0; k < e.Runs; k++ {
		g.Go(func() error {
			p := e.Params
			p.TimeTag = e.Params.TimeTag + uint32(k)

			s, err := nbody.New(e.Bodies, p, e.NewBackend())
			if err != nil {
				return err
			}
			defer s.End()

			r := NewRunner(s)
			r.SetEnergy(e.Energy)
			if e.NewMetrics != nil {
				for _, m := range e.NewMetrics() {
					r.AddMetric(m)
				}
			}

			res, err := r.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[k] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
