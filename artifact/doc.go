// Package artifact stores the text artifacts agents hand to each other:
// answer sheets, model answers and other whole-file payloads identified by a
// path. Every Save overwrites the whole artifact and every Get returns the
// whole artifact.
//
// Implementations:
//   - FSStore keeps plain files below a root directory (the default)
//   - InMemoryStore keeps bytes in a map and is used by tests
//   - s3.Store keeps objects in an S3 bucket
//
// Callers should depend on the Store interface rather than concrete types so
// they can substitute alternative persistence layers in tests or production.
package artifact
