/*
Package graph implements the dataflow model: typed ports, nodes and the graph
that owns them.

Evaluation is pull based. Reading an InputPort returns the value of the
OutputPort it is wired to, and reading an OutputPort executes the node that
owns it. When the node belongs to a Graph, every top-level pull opens an
evaluation pass: within one pass each node executes at most once and every
consumer observes the same snapshot. The next top-level pull starts a new pass.

Cycles are rejected when a connection is made (ErrCyclicConnection). A
per-pass execution stack additionally reports ErrCyclicEvaluation if a node
is re-entered while it is still executing.

The package is single threaded by contract: callers serialize every
mutation and pull, as a UI event loop naturally does.
*/
package graph
