// Package store saves and loads densenet model snapshots.
//
// A snapshot bundles a model topology, its encoded weights and, optionally,
// the hyperparameters it was built from. Files use a small binary envelope
// around a JSON payload:
//
//	Format Structure:
//	  [4 bytes: Magic "DNET"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Payload Size (uint64 LE)]
//	  [32 bytes: SHA-256 of the payload]
//	  [Payload: JSON Snapshot]
//
// Example usage:
//
//	snap := store.FromModel(m, &hyper)
//	if err := store.Save("model.dnet", snap); err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, err := store.Load("model.dnet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := snap.Model()
package store
