package wait

import (
	"context"
	"errors"
	"fmt"

	"github.com/gostdlib/maybesync/goroutines/pooled"
	"github.com/gostdlib/maybesync/prim/maybe"
)

// ExampleGroup_fill shows workers filling a shared table through a RefCell.
func ExampleGroup_fill() {
	ctx := context.Background()
	g := Group{Name: "fill"}

	table := maybe.NewRefCell(make([]int, 3))
	if maybe.SyncEnabled {
		for i := 0; i < 3; i++ {
			i := i
			g.Go(ctx, func(context.Context) error {
				table.Update(func(s *[]int) { (*s)[i] = i * i })
				return nil
			})
		}
	} else {
		// A single-threaded RefCell must stay on one goroutine.
		g.Go(ctx, func(context.Context) error {
			for i := 0; i < 3; i++ {
				table.Update(func(s *[]int) { (*s)[i] = i * i })
			}
			return nil
		})
	}

	if err := g.Wait(ctx); err != nil {
		fmt.Println(err)
		return
	}
	table.View(func(s []int) { fmt.Println(s) })

	// Output: [0 1 4]
}

// ExampleGroup_cancel_on_err illustrates how to use Group to do parallel tasks and
// cancel all remaining tasks if a single task has an error.
func ExampleGroup_cancel_on_err() {
	ctx, cancel := context.WithCancel(context.Background())
	p, _ := pooled.New(10)
	defer p.Close()

	g := Group{Pool: p, CancelOnErr: cancel}

	for i := 0; i < 10000; i++ {
		i := i

		g.Go(
			ctx,
			func(ctx context.Context) error {
				if i == 100 {
					return errors.New("error")
				}
				return nil
			},
		)
	}

	if err := g.Wait(ctx); err != nil {
		fmt.Println(err)
	}

	// Output: error
}
