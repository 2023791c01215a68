package mask

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/host/hosttest"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name string
		b    layer.Bounds
		w, h int
	}{
		{name: "interior rectangle", b: layer.Bounds{Left: 2, Top: 1, Right: 5, Bottom: 4}, w: 8, h: 6},
		{name: "full canvas", b: layer.Bounds{Left: 0, Top: 0, Right: 8, Bottom: 6}, w: 8, h: 6},
		{name: "single pixel", b: layer.Bounds{Left: 7, Top: 5, Right: 8, Bottom: 6}, w: 8, h: 6},
		{name: "single row touching edges", b: layer.Bounds{Left: 0, Top: 3, Right: 8, Bottom: 4}, w: 8, h: 6},
		{name: "single column", b: layer.Bounds{Left: 4, Top: 0, Right: 5, Bottom: 6}, w: 8, h: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Synthesize(tt.b, tt.w, tt.h)
			require.Len(t, buf, tt.w*tt.h)

			whites := 0
			for y := 0; y < tt.h; y++ {
				for x := 0; x < tt.w; x++ {
					inside := x >= tt.b.Left && x < tt.b.Right && y >= tt.b.Top && y < tt.b.Bottom
					v := buf[y*tt.w+x]
					if inside {
						assert.Equal(t, byte(255), v, "pixel (%d,%d)", x, y)
						whites++
					} else {
						assert.Equal(t, byte(0), v, "pixel (%d,%d)", x, y)
					}
				}
			}
			assert.Equal(t, tt.b.Width()*tt.b.Height(), whites)
		})
	}
}

func TestCreateMaskFromBounds(t *testing.T) {
	node := hosttest.GroupAt("7", "Hero_SWIPE", layer.Bounds{Left: 1, Top: 1, Right: 3, Bottom: 2})
	fake := hosttest.New("Doc.psd", 4, 3, node)

	err := fake.RunAsAtomic(context.Background(), "t", func(ctx context.Context) error {
		return CreateMaskFromBounds(ctx, fake, fake, node)
	})
	require.NoError(t, err)

	got, ok := fake.Mask("7")
	require.True(t, ok)
	assert.Equal(t, []byte{
		0, 0, 0, 0,
		0, 255, 255, 0,
		0, 0, 0, 0,
	}, got)
	assert.Zero(t, fake.LiveImageData())
}

func TestCreateMaskFromBounds_DisposesOnFailure(t *testing.T) {
	node := hosttest.GroupAt("7", "Hero_SWIPE", layer.Bounds{Left: 0, Top: 0, Right: 2, Bottom: 2})
	fake := hosttest.New("Doc.psd", 4, 4, node)
	fake.Fail = map[string]error{"mask:7": errors.New("host refused")}

	err := fake.RunAsAtomic(context.Background(), "t", func(ctx context.Context) error {
		return CreateMaskFromBounds(ctx, fake, fake, node)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host refused")
	assert.Zero(t, fake.LiveImageData())
}

func TestApplier_CreateMasks(t *testing.T) {
	inner := hosttest.GroupAt("3", "Inner_MERGE", layer.Bounds{Left: 0, Top: 0, Right: 2, Bottom: 2})
	hero := hosttest.GroupAt("2", "Hero_SWIPE", layer.Bounds{Left: 1, Top: 1, Right: 4, Bottom: 4}, inner)
	fake := hosttest.New("Doc.psd", 4, 4, hosttest.Group("1", "Bg"), hero)

	n, err := NewApplier(fake, fake).CreateMasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	calls := fake.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "begin:"+TransactionLabel, calls[0])
	assert.Equal(t, "commit:"+TransactionLabel, calls[len(calls)-1])
	assert.ElementsMatch(t, []string{"mask:2", "mask:3"}, calls[1:len(calls)-1])

	for _, id := range []string{"2", "3"} {
		_, ok := fake.Mask(id)
		assert.True(t, ok, "mask for %s", id)
	}
	_, ok := fake.Mask("1")
	assert.False(t, ok)
	assert.Zero(t, fake.LiveImageData())
	assert.Empty(t, fake.Alerts())
}

// gatedHost holds every PutLayerMask until all expected commits are in flight.
type gatedHost struct {
	*hosttest.Fake
	arrived sync.WaitGroup
	all     chan struct{}
}

func newGatedHost(fake *hosttest.Fake, n int) *gatedHost {
	g := &gatedHost{Fake: fake, all: make(chan struct{})}
	g.arrived.Add(n)
	go func() {
		g.arrived.Wait()
		close(g.all)
	}()
	return g
}

func (g *gatedHost) PutLayerMask(ctx context.Context, layerID string, data host.ImageData) error {
	g.arrived.Done()
	select {
	case <-g.all:
	case <-time.After(2 * time.Second):
		return errors.New("mask commits were not in flight together")
	}
	return g.Fake.PutLayerMask(ctx, layerID, data)
}

func TestApplier_CreateMasks_CommitsConcurrently(t *testing.T) {
	fake := hosttest.New("Doc.psd", 3, 3,
		hosttest.GroupAt("1", "A_SWIPE", layer.Bounds{Left: 0, Top: 0, Right: 1, Bottom: 1}),
		hosttest.GroupAt("2", "B_MERGE", layer.Bounds{Left: 1, Top: 1, Right: 2, Bottom: 2}),
		hosttest.GroupAt("3", "C_SWIPE", layer.Bounds{Left: 2, Top: 2, Right: 3, Bottom: 3}),
	)
	gated := newGatedHost(fake, 3)

	n, err := NewApplier(gated, fake).CreateMasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, id := range []string{"1", "2", "3"} {
		_, ok := fake.Mask(id)
		assert.True(t, ok, "mask for %s", id)
	}
	assert.Zero(t, fake.LiveImageData())
}

func TestApplier_CreateMasks_Empty(t *testing.T) {
	fake := hosttest.New("Doc.psd", 4, 4, hosttest.Group("1", "Bg"))

	n, err := NewApplier(fake, fake).CreateMasks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{NoLayersMessage}, fake.Alerts())
	assert.Empty(t, fake.Calls())
}

func TestApplier_CreateMasks_FailureFailsTransaction(t *testing.T) {
	a := hosttest.GroupAt("2", "A_SWIPE", layer.Bounds{Left: 0, Top: 0, Right: 1, Bottom: 1})
	b := hosttest.GroupAt("3", "B_MERGE", layer.Bounds{Left: 1, Top: 1, Right: 2, Bottom: 2})
	fake := hosttest.New("Doc.psd", 2, 2, a, b)
	boom := errors.New("boom")
	fake.Fail = map[string]error{"mask:3": boom}

	_, err := NewApplier(fake, fake).CreateMasks(context.Background())
	require.ErrorIs(t, err, boom)

	calls := fake.Calls()
	assert.Equal(t, "rollback:"+TransactionLabel, calls[len(calls)-1])
	assert.Zero(t, fake.LiveImageData())
}
