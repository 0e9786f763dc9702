package kiva_test

import (
	"context"
	"fmt"
	"os"

	"github.com/kivadb/kiva"
)

func ExampleNewRegistry() {
	ctx := context.Background()
	dir, _ := os.MkdirTemp("", "kiva")
	defer os.RemoveAll(dir)

	// A registry owns the open databases of the process. Each database is
	// loaded from its snapshot file on first reference; a name with no
	// snapshot starts empty.
	registry := kiva.NewRegistry(
		kiva.WithRegistryPersistence(kiva.NewPersistence(
			// Directory holding one <name>.json snapshot per database.
			kiva.WithPersistenceDirectory(dir),
			// Write failures are asynchronous; they surface here.
			kiva.WithPersistenceErrorHook(func(name string, err error) {
				fmt.Println("failed to persist", name, err)
			}),
		)),
		kiva.WithRegistryLogger(kiva.NewNopLogger()),
	)

	things, err := registry.Open(ctx, "things")
	if err != nil {
		fmt.Println(err)
		return
	}

	// Documents are maps or tagged structs. Without an _id a random
	// 16-character id is generated.
	id, _ := things.Insert(ctx, map[string]any{"name": "foo", "val": 1})
	_, _ = things.Insert(ctx, map[string]any{"name": "bar", "val": 2})

	// Queries combine implicit equality, $-operators and logical
	// combinators.
	matches, _ := things.Count(ctx, map[string]any{"val": map[string]any{"$gte": 1}})
	fmt.Println("matching:", matches)

	doc, _ := things.FindOne(ctx, map[string]any{"_id": id},
		kiva.WithProjection(map[string]any{"name": 1}))
	fmt.Println("name:", doc.Get("name"))

	// Updates apply operator by operator; more than one match requires the
	// multi option.
	changed, _ := things.Update(ctx,
		map[string]any{"name": "bar"},
		map[string]any{"$inc": map[string]any{"val": 10}})
	fmt.Println("changed:", changed)

	// Close flushes pending snapshot writes before evicting the database.
	_ = registry.CloseAll(ctx)

	// Output:
	// matching: 2
	// name: foo
	// changed: 1
}

func ExampleNewCollection() {
	ctx := context.Background()

	// A standalone collection without persistence lives in memory only.
	birds, _ := kiva.NewCollection("birds")

	type bird struct {
		Name   string   `kiva:"name"`
		Colors []string `kiva:"colors,omitempty"`
	}
	_, _ = birds.Insert(ctx, bird{Name: "magpie", Colors: []string{"black", "white"}})
	_, _ = birds.Insert(ctx, bird{Name: "crow"})

	n, _ := birds.Count(ctx, map[string]any{"colors": map[string]any{"$exists": true}})
	fmt.Println("with colors:", n)

	// Output:
	// with colors: 1
}

func ExampleNewDispatcher() {
	ctx := context.Background()
	dir, _ := os.MkdirTemp("", "kiva")
	defer os.RemoveAll(dir)

	// The dispatcher is a single entry point for loosely typed requests,
	// answering with HTTP-like statuses.
	d := kiva.NewDispatcher(kiva.WithDispatcherRegistry(kiva.NewRegistry(
		kiva.WithRegistryPersistence(kiva.NewPersistence(
			kiva.WithPersistenceDirectory(dir),
		)),
	)))

	res := d.Dispatch(ctx, map[string]any{
		"action":   "insert",
		"database": "things",
		"document": map[string]any{"name": "foo"},
	})
	fmt.Println(res.Status)

	res = d.Dispatch(ctx, map[string]any{"action": "explode"})
	fmt.Println(res.Status)

	// Output:
	// 200
	// 400
}
