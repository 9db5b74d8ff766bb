/*
Package ports defines the driven ports (interfaces) for nodeweave.

These interfaces decouple the editor from external implementations, allowing
graphs to be persisted in various storage backends.

# Key Interfaces

  - GraphStore: Saves, loads, deletes and lists graph documents by name.
  - DistributedLocker: Serializes concurrent saves of the same graph.

RunGraphStoreContract is a reusable suite every GraphStore adapter runs
in its tests.
*/
package ports
