/*
Package ports defines the driven ports (interfaces) for the ordering assistant.

These interfaces decouple the conversation engine from external implementations,
allowing it to work with various storage backends, menu sources and completion services.

# Key Interfaces

  - StateStore: Responsible for persisting and loading Sessions (cart + memory).
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Catalog: Read-only item lookup (memory, file, SQL).
  - Completer: Opaque text completion service consumed by handlers.
  - Conversation: The single logical operation exposed to outer surfaces.
*/
package ports
