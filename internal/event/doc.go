// Package event connects the hit bookkeeping in internal/collect to the
// SQLite store.
//
// A Process is one run of a program over a store, stamped with a unique
// token. Modules are its labeled producers; each declares up front which
// collections it writes. An Event is one processing unit as seen by one
// module: it is the collect.Sink that writes that module's products and the
// collect.Source that reads anything already stored for the unit.
//
// Declarations close when the first event is opened. Committing into an
// undeclared output or declaring an output twice is an error from the
// collect package's taxonomy.
package event
