/*
Package domain contains the shared vocabulary of the nodeweave dataflow core.

It defines the closed set of port data kinds, the value types that travel
through wires, the error taxonomy and the lifecycle events emitted while a
graph is wired and evaluated. The package has no dependencies beyond the
standard library and is imported by every other layer.

# Key Entities

  - DataKind: String, Boolean, Integer, Vector3 (and Void as a "no output" marker).
  - Vector3 / Position: value payload and canvas coordinate.
  - LifecycleHooks: callbacks for node executions and connection changes.
*/
package domain
