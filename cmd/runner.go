package main

import (
	"context"
	"time"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/pipeline"
	"github.com/sells-group/uav-enrich/internal/research"
)

// initResearch validates cfg for mode and builds the researcher and the
// orchestrator options shared by the enrich and serve commands. offline
// forces the stub provider.
func initResearch(ctx context.Context, c *config.Config, mode string, offline bool) (research.Researcher, []pipeline.Option, error) {
	if offline {
		c.Research.Provider = research.ProviderStub
	}
	if err := c.Validate(mode); err != nil {
		return nil, nil, err
	}

	researcher, err := research.New(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	pacer, err := pipeline.NewPacer(c.Pipeline)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{pipeline.WithPacer(pacer)}
	if c.Pipeline.CallTimeoutSecs > 0 {
		opts = append(opts, pipeline.WithCallTimeout(time.Duration(c.Pipeline.CallTimeoutSecs)*time.Second))
	}
	return researcher, opts, nil
}
