package maybe_test

import (
	"fmt"

	"github.com/gostdlib/maybesync/prim/maybe"
)

func ExampleArc() {
	conn := maybe.NewArc("conn-1", maybe.WithRelease(func(name string) {
		fmt.Println("closing", name)
	}))

	worker := conn.Clone()
	fmt.Println("owners:", conn.StrongCount())
	worker.Drop()
	fmt.Println("owners:", conn.StrongCount())
	conn.Drop()

	// Output:
	// owners: 2
	// owners: 1
	// closing conn-1
}

func ExampleRefCell() {
	cfg := maybe.NewRefCell(map[string]string{"mode": "fast"})

	cfg.Update(func(m *map[string]string) {
		(*m)["mode"] = "safe"
	})

	r := cfg.Borrow()
	defer r.Release()
	fmt.Println(r.Get()["mode"])

	// Output: safe
}

func ExampleCell() {
	type level uint8

	lvl := maybe.NewCell(level(1))
	old := lvl.Swap(3)
	fmt.Println(old, lvl.Get())

	// Output: 1 3
}
