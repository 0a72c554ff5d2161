// Package ir provides the data model shared by every hitkit package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the data model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Hit is a plain value. It is built once by internal/hit and never
//     mutated afterwards.
//   - View and SignalType on a Hit always come from the geometry lookup,
//     never from the caller.
//   - Relations are index-aligned with the collection they describe. An
//     absent entry is the zero Ptr, never an error.
//   - Relation targets inside an uncommitted collection are PendingRefs
//     (output name + position). They become Ptrs only on the sink side.
package ir
