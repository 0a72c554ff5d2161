// Package store provides SQLite-backed persistence for event products.
//
// A product is one collection written by one module of one process into
// one event: hits, wires, raw digits or a relation table. Products are
// written once. Their identity is the content-addressed ir.ProductID of
// (process, label, instance, kind), so a relation target stored as a
// ProductID plus element index resolves inside the same event.
//
// # Layout
//
//   - events: (run, subrun, event)
//   - products: one row per collection, with size and the process token
//   - hits, wires, raw_digits: one row per element, keyed by index
//   - relations: one row per left element, NULL target when absent
//
// Retrieval by ir.InputTag picks the most recently written product when
// the tag leaves the process unset.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
