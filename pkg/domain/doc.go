/*
Package domain contains the core domain models of the ordering assistant.

It defines the entities the conversation engine reasons about: catalog items, cart
lines, memory entries, sessions and the routing result returned for each message.
This package is kept pure and free of I/O and persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Intent: The closed set of purposes a message can be classified into.
  - CatalogItem: A sellable item, identified by its lower-cased key.
  - CartLine: An item key and a positive quantity, kept in first-add order.
  - MemoryEntry: One user/assistant exchange with its approximate token count.
  - Session: The unit of isolation. Owns exactly one cart and one memory log.
  - RoutingResult: The immutable reply produced for a single message.
*/
package domain
