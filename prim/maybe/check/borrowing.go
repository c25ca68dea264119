package check

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gostdlib/maybesync/prim/maybe"
	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// maxBorrowRounds bounds the borrowing check, as each round waits on a delayed release.
const maxBorrowRounds = 50

// releaseDelay is how long a conflicting guard is held before it is released.
const releaseDelay = time.Millisecond

// borrowing checks that a borrow conflicting with an outstanding one is refused, that it
// succeeds once the outstanding one is released, and how a panic during exclusive access is
// handled. Without the sync tag a conflicting Borrow() or BorrowMut() must panic. With it,
// the conflicting guard is released from another goroutine while this one retries.
func borrowing(ctx context.Context, o checkOptions, r *Report) error {
	w, err := newWorkers(o)
	if err != nil {
		return err
	}
	defer w.close()

	rounds := min(o.iterations, maxBorrowRounds)
	r.Iterations = rounds

	for round := 0; round < rounds; round++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cell := maybe.NewRefCell(round)

		shared := cell.Borrow()
		if _, err := cell.TryBorrowMut(); !errors.Is(err, maybe.ErrAlreadyBorrowed) {
			r.violate("round %d: TryBorrowMut() with a Ref outstanding: got %v, want %v", round, err, maybe.ErrAlreadyBorrowed)
		}
		if !maybe.SyncEnabled {
			err := contract.Catch(func() { cell.BorrowMut() })
			if !errors.Is(err, maybe.ErrAlreadyBorrowed) {
				r.violate("round %d: BorrowMut() with a Ref outstanding: got %v, want a panic with %v", round, err, maybe.ErrAlreadyBorrowed)
			}
		}
		if err := releaseLater(ctx, w, shared.Release); err != nil {
			return err
		}
		excl, err := retryBorrow(ctx, cell.TryBorrowMut)
		if err != nil {
			r.violate("round %d: BorrowMut after the Ref was released: %v", round, err)
			continue
		}

		if _, err := cell.TryBorrow(); !errors.Is(err, maybe.ErrAlreadyMutablyBorrowed) {
			r.violate("round %d: TryBorrow() with a RefMut outstanding: got %v, want %v", round, err, maybe.ErrAlreadyMutablyBorrowed)
		}
		if !maybe.SyncEnabled {
			err := contract.Catch(func() { cell.Borrow() })
			if !errors.Is(err, maybe.ErrAlreadyMutablyBorrowed) {
				r.violate("round %d: Borrow() with a RefMut outstanding: got %v, want a panic with %v", round, err, maybe.ErrAlreadyMutablyBorrowed)
			}
		}
		excl.Set(excl.Get() + 1)
		if err := releaseLater(ctx, w, excl.Release); err != nil {
			return err
		}
		g, err := retryBorrow(ctx, cell.TryBorrow)
		if err != nil {
			r.violate("round %d: Borrow after the RefMut was released: %v", round, err)
			continue
		}
		if got := g.Get(); got != round+1 {
			r.violate("round %d: value after exclusive increment is %d, want %d", round, got, round+1)
		}
		g.Release()

		panicDuringUpdate(round, cell, r)
	}
	return nil
}

// panicDuringUpdate panics inside RefCell.Update(). The sync realization must poison the cell
// until ClearPoison() is called. The local one never poisons and must release the borrow.
func panicDuringUpdate(round int, cell *maybe.RefCell[int], r *Report) {
	boom := errors.New("boom")
	if err := contract.Catch(func() { cell.Update(func(*int) { panic(boom) }) }); !errors.Is(err, boom) {
		r.violate("round %d: Update() did not re-raise the panic, got %v", round, err)
	}

	_, err := cell.TryBorrow()
	if !maybe.SyncEnabled {
		if err != nil || cell.IsPoisoned() {
			r.violate("round %d: local RefCell unusable after a panic: %v", round, err)
		}
		return
	}

	if !errors.Is(err, maybe.ErrPoisoned) || !cell.IsPoisoned() {
		r.violate("round %d: TryBorrow() after a panic in Update(): got %v, want %v", round, err, maybe.ErrPoisoned)
		return
	}
	cell.ClearPoison()
	g, err := cell.TryBorrow()
	if err != nil {
		r.violate("round %d: TryBorrow() after ClearPoison(): %v", round, err)
		return
	}
	g.Release()
}

// releaseLater calls release after releaseDelay from a pool goroutine. Without the sync tag
// guards cannot leave the goroutine, so release is called right away.
func releaseLater(ctx context.Context, w *workers, release func()) error {
	if !maybe.SyncEnabled {
		release()
		return nil
	}
	return w.pool.Submit(ctx, func(ctx context.Context) {
		time.Sleep(releaseDelay)
		release()
	})
}

// retryBorrow calls try until it stops reporting a borrow conflict. A poisoned cell is not
// retried.
func retryBorrow[G any](ctx context.Context, try func() (G, error)) (G, error) {
	var g G
	op := func() error {
		var err error
		g, err = try()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, maybe.ErrPoisoned):
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = releaseDelay
	b.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		var zero G
		return zero, err
	}
	return g, nil
}
