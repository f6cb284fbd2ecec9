package pipeline

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/uav-enrich/internal/research"
)

// --- Researcher Mock ---

type mockResearcher struct {
	mock.Mock
}

func (m *mockResearcher) Research(ctx context.Context, companyName string) (*research.Result, error) {
	args := m.Called(ctx, companyName)

	var res *research.Result
	switch v := args.Get(0).(type) {
	case func(context.Context, string) *research.Result:
		res = v(ctx, companyName)
	case *research.Result:
		res = v
	}

	if fn, ok := args.Get(1).(func(context.Context, string) error); ok {
		return res, fn(ctx, companyName)
	}
	return res, args.Error(1)
}

// --- Pacer Recorder ---

// recordingPacer never sleeps; it counts calls and remembers prev errors.
type recordingPacer struct {
	mu    sync.Mutex
	calls int
	prevs []error
}

func (p *recordingPacer) Wait(_ context.Context, prev error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prevs = append(p.prevs, prev)
	return nil
}

// labeledBody renders a full research response for name.
func labeledBody(name string) string {
	return "Website: https://" + name + ".example\n" +
		"Category: Drones\n" +
		"Size: 11-50\n" +
		"Countries: USA\n" +
		"UAV Type: Small UAVs\n" +
		"Launch Recovery: Launchers\n" +
		"Services: Design\n" +
		"Manufacturing: Yes\n" +
		"Composites: No\n" +
		"Email: info@" + name + ".example\n" +
		"Phone: +1 555 0100\n" +
		"LinkedIn: https://linkedin.com/company/" + name
}
