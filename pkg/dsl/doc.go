/*
Package dsl provides a Go DSL for programmatically constructing nodeweave graphs.

It lets tests and tools describe a graph with a fluent builder instead of
hand-writing a JSON or YAML document. The builder produces a
document.Document, so everything it builds can also be saved and loaded.

Example usage:

	package main

	import (
		"github.com/aretw0/nodeweave/pkg/dsl"
		"github.com/aretw0/nodeweave/pkg/nodes"
	)

	func main() {
		b := dsl.New()

		b.Add("k", nodes.ConstInteger).At(0, 0).Set("value", 40)
		b.Add("sum", nodes.MathAdd).At(200, 0).
			Wire("a", "k", "value").
			Set("b", 2)

		reg, _ := nodes.NewRegistry(nodes.Deps{})
		g, err := b.Build(reg)
		// ... g.Pull(sum, "sum") yields 42
	}
*/
package dsl
