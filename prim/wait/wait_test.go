package wait

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/goroutines/limited"
	"github.com/gostdlib/maybesync/goroutines/pooled"
)

func TestGroupBasic(t *testing.T) {
	t.Parallel()

	limit, err := limited.New(5)
	if err != nil {
		t.Fatalf("TestGroupBasic: %s", err)
	}
	defer limit.Close()
	pooler, err := pooled.New(5)
	if err != nil {
		t.Fatalf("TestGroupBasic: %s", err)
	}
	defer pooler.Close()

	tests := []struct {
		desc string
		pool goroutines.Pool
	}{
		{desc: "No pool", pool: nil},
		{desc: "With limited pool", pool: limit},
		{desc: "With pooled pool", pool: pooler},
	}

	for _, test := range tests {
		g := Group{Pool: test.pool}
		var count atomic.Int32
		exit := make(chan struct{})

		f := func(ctx context.Context) error {
			count.Add(1)
			defer count.Add(-1)
			<-exit
			return nil
		}

		for i := 0; i < 5; i++ {
			g.Go(context.Background(), f)
		}

		for count.Load() != 5 {
			time.Sleep(10 * time.Millisecond)
		}

		if g.Running() != 5 {
			t.Errorf("TestGroupBasic(%s): Expected Running() to return 5, got %d", test.desc, g.Running())
		}
		close(exit)

		if err := g.Wait(context.Background()); err != nil {
			t.Errorf("TestGroupBasic(%s): got err == %s, want err == nil", test.desc, err)
		}
		if g.Running() != 0 {
			t.Errorf("TestGroupBasic(%s): Expected Running() to return 0, got %d", test.desc, g.Running())
		}
	}
}

func TestGroupCancelOnErr(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	g := Group{CancelOnErr: cancel}
	want := errors.New("error")

	for i := 0; i < 5; i++ {
		i := i
		g.Go(
			ctx,
			func(ctx context.Context) error {
				if i == 3 {
					return want
				}
				<-ctx.Done()
				return nil
			},
		)
	}
	if err := g.Wait(ctx); !errors.Is(err, want) {
		t.Errorf("TestGroupCancelOnErr: got %v, want %v", err, want)
	}
}

func TestGroupKeepsEveryError(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")

	g := Group{}
	done := make(chan struct{})
	g.Go(context.Background(), func(context.Context) error {
		defer close(done)
		return errA
	})
	g.Go(context.Background(), func(context.Context) error {
		<-done
		return errB
	})

	err := g.Wait(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("TestGroupKeepsEveryError: got %v, want both a and b", err)
	}
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("TestGroupKeepsEveryError: Group not reset after Wait(), got %v", err)
	}
}

func TestGroupPoolRejects(t *testing.T) {
	t.Parallel()

	p, err := pooled.New(1)
	if err != nil {
		t.Fatalf("TestGroupPoolRejects: %s", err)
	}
	p.Close()

	g := Group{Pool: p}
	g.Go(context.Background(), func(context.Context) error { return nil })
	if err := g.Wait(context.Background()); err == nil {
		t.Errorf("TestGroupPoolRejects: want err != nil for a closed pool")
	}
}

func TestGroupTogether(t *testing.T) {
	t.Parallel()

	small, err := limited.New(2)
	if err != nil {
		t.Fatal(err)
	}
	defer small.Close()
	big, err := pooled.New(4)
	if err != nil {
		t.Fatal(err)
	}
	defer big.Close()

	tests := []struct {
		desc    string
		pool    goroutines.Pool
		wantErr bool
	}{
		{desc: "No pool", pool: nil},
		{desc: "Pool fits", pool: big},
		{desc: "Pool too small", pool: small, wantErr: true},
	}

	for _, test := range tests {
		g := Group{Name: "together", Pool: test.pool}
		var started, peak atomic.Int32
		seen := make([]bool, 4)

		err := g.Together(context.Background(), 4, func(ctx context.Context, i int) error {
			seen[i] = true
			n := started.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			for started.Load() < 4 {
				time.Sleep(time.Millisecond)
			}
			return nil
		})

		switch {
		case test.wantErr && err == nil:
			t.Errorf("TestGroupTogether(%s): got err == nil, want err != nil", test.desc)
			continue
		case test.wantErr:
			continue
		case err != nil:
			t.Errorf("TestGroupTogether(%s): got err == %s, want err == nil", test.desc, err)
			continue
		}
		if peak.Load() != 4 {
			t.Errorf("TestGroupTogether(%s): %d calls ran at once, want 4", test.desc, peak.Load())
		}
		for i, ok := range seen {
			if !ok {
				t.Errorf("TestGroupTogether(%s): call %d never ran", test.desc, i)
			}
		}
	}
}

func TestGroupTogetherCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := Group{}
	var calls atomic.Int32
	err := g.Together(ctx, 3, func(ctx context.Context, i int) error {
		calls.Add(1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("TestGroupTogetherCanceled: got err == %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("TestGroupTogetherCanceled: f was called %d times, want 0", calls.Load())
	}
}
