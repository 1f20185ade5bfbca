// Package repositories implements the durable key-value stores the photo collection is persisted to.
//
// Every backend implements [KeyValueStore]: a flat string-to-string map with overwrite semantics, matching the
// single-key persistence model of the photo store (one key holds the whole JSON-encoded collection).
//
// Key Implementations:
//   - [SQLiteStore] : default backend, a kv_store table created by the embedded migrations
//   - [RedisStore] : GET/SET/DEL against a Redis server
//   - [MemoryStore] : process-local map for tests and ephemeral runs
//
// A missing key is reported as [shared.ErrKeyNotFound]; every other failure wraps [shared.ErrPersistence].
package repositories
