// Package session persists conversation transcripts between runs. A Record
// stores the provider wire messages plus accumulated token usage; the runner
// loads a record before the first turn and saves the grown transcript after a
// successful run.
//
// Only implementations live here. InMemoryStore covers tests and demos; add
// durable backends (Redis, Postgres, ...) as sub-packages without touching
// calling code.
package session
