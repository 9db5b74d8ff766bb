/*
Package nodeweave is the core of a visual dataflow editor: typed ports, nodes,
a registry of node types, a graph with lazy pull evaluation, and a document
format for saving and loading graphs.

# Concept

A graph is a set of nodes wired output-to-input. Nothing runs on edit.
Evaluating a node pulls its inputs, which executes upstream nodes on demand.
Each top-level evaluation is one pass: within a pass every node executes at
most once and later pulls reuse the cached result. Connections that would
close a cycle are rejected when they are made.

The Editor wraps one graph with its registry, a graph store and optional
distributed locking, and is the entry point used by the CLI, the HTTP API and
the MCP server. The packages under pkg/ can also be used directly.

# Key Features

  - Typed ports: String, Boolean, Integer and Vector3, checked on connect and on write.
  - Lazy evaluation with per-pass memoization and connect-time cycle rejection.
  - Stable node identity persisted in a JSON (or YAML) document.
  - Pluggable stores: filesystem, memory and Redis.
  - Lifecycle hooks feeding structured logs and Prometheus metrics.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/nodeweave"
		"github.com/aretw0/nodeweave/pkg/domain"
		"github.com/aretw0/nodeweave/pkg/nodes"
	)

	func main() {
		ed, err := nodeweave.New(nodeweave.WithNodeDeps(nodes.Deps{
			Sink: nodes.WriterSink{W: os.Stdout},
		}))
		if err != nil {
			log.Fatal(err)
		}

		c, _ := ed.AddNode(nodes.ConstString, domain.Position{})
		p, _ := ed.AddNode(nodes.Print, domain.Position{X: 200})
		_ = ed.SetManualValue(c.UniqueIdentifier(), "value", "hi")
		_ = ed.Connect(c.UniqueIdentifier(), "value", p.UniqueIdentifier(), "text")

		// Prints "hi".
		if err := ed.Evaluate(p.UniqueIdentifier()); err != nil {
			log.Fatal(err)
		}

		if err := ed.Save(context.Background(), "hello"); err != nil {
			log.Fatal(err)
		}
	}
*/
package nodeweave
