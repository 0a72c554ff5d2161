// Package collect owns hit collections and their relation tables until
// they are committed to a sink.
//
// One State type holds the records and the two relation tables
// (hit→wire, hit→raw digit). Three strategies populate it:
//
//   - Creator appends hits one at a time with caller-supplied targets.
//   - Associator takes a finished collection and matches channels against
//     labeled wire and raw digit collections.
//   - Refiner takes a collection derived from an already-stored one and
//     carries that collection's relations over by channel.
//
// Associator and Refiner plug into State.Commit through the populator
// interface; they share nothing but the State they fill.
//
// # Declaration
//
// Every output instance is declared once, before the first event, with
// Declare. The declaration fixes which relation tables exist for that
// instance. Committing into an undeclared instance fails at the sink.
//
// # Ownership
//
// A State belongs to one producer for one processing unit: construct,
// populate, commit. Nothing here is safe for concurrent use and nothing
// needs to be.
package collect
