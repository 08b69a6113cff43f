package renderer

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/rng"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/df07/go-progressive-pathtracer/pkg/world"
)

// testLogger implements core.Logger for testing by discarding all output
type testLogger struct{}

// Ensure testLogger implements core.Logger
var _ core.Logger = (*testLogger)(nil)

func (tl *testLogger) Printf(format string, args ...interface{}) {
	// Discard log output during tests
}

var errMockFailure = errors.New("mock integrator failure")

type panicValue struct {
	value any
}

// MockIntegrator returns a constant color and can be switched to fail or panic
type MockIntegrator struct {
	returnColor core.Vec3
	fail        atomic.Bool
	failAfter   atomic.Int64 // fail every call past this count, 0 disables
	panicWith   atomic.Pointer[panicValue]
	callCount   atomic.Int64
}

var _ integrator.Integrator = (*MockIntegrator)(nil)

func (m *MockIntegrator) Trace(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32) (core.Vec3, error) {
	var stats integrator.TraceStats
	return m.TraceWithStats(ray, repo, state, maxDepth, &stats)
}

func (m *MockIntegrator) TraceWithStats(ray core.Ray, repo *world.Repository, state *rng.State, maxDepth uint32, stats *integrator.TraceStats) (core.Vec3, error) {
	n := m.callCount.Add(1)
	if p := m.panicWith.Load(); p != nil {
		panic(p.value)
	}
	if limit := m.failAfter.Load(); limit > 0 && n > limit {
		return core.Vec3{}, errMockFailure
	}
	if m.fail.Load() {
		return core.Vec3{}, errMockFailure
	}
	stats.Record(integrator.OutcomeMiss, 0)
	return m.returnColor, nil
}

// createTestScene returns the default scene sized for fast tests
func createTestScene(width, height, samples, depth int) *scene.Scene {
	s := scene.NewDefaultScene()
	s.SamplingConfig = scene.SamplingConfig{
		Width:           width,
		Height:          height,
		SamplesPerPixel: samples,
		MaxDepth:        depth,
	}
	return s
}

// newTestRenderer creates a renderer for s with small tiles
func newTestRenderer(t testing.TB, s *scene.Scene, config ProgressiveConfig) *ProgressiveRenderer {
	t.Helper()
	pr, err := NewProgressiveRenderer(s, s.SamplingConfig.Width, s.SamplingConfig.Height, config, &testLogger{})
	if err != nil {
		t.Fatalf("NewProgressiveRenderer failed: %v", err)
	}
	t.Cleanup(pr.Close)
	return pr
}

func testConfig() ProgressiveConfig {
	config := DefaultProgressiveConfig()
	config.TileSize = 4
	config.NumWorkers = 3
	return config
}
