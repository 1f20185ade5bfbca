// Package photos implements the photo store: the single owner of the photo collection.
//
// # Persistence
//
// The collection lives in memory, newest first, and is written in full to a [repositories.KeyValueStore]
// under one key after every mutation. [Store.Load] reads it back at startup; a missing or unreadable value
// degrades to an empty collection and is only logged.
//
// # Files
//
// Each record owns one image file inside a private directory ([FileStore]). Adding a photo copies the capture
// into that directory; deleting a photo removes the copy. The capture file itself is never touched.
//
// # Side effects
//
// A [Notifier] is told about every new record and asked to withdraw pending notifications for deleted ones.
// Notifier failures are logged and never undo a mutation. Saving to the device gallery goes through a
// [media.Library] and reports failure as false rather than an error.
//
// # Concurrency
//
// Mutations and the persist that follows them run under one mutex, so the persisted value always matches
// the in-memory collection and concurrent adds cannot lose each other's records.
package photos
