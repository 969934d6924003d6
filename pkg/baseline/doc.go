// Package baseline drives one reconciliation pass over a fleet of buckets:
// resolve the worklist, ensure the log sink exists, classify each bucket's
// deny-insecure-transport policy and access logging against their canonical
// shapes, optionally apply corrections, and aggregate a report.
//
// The pass is stateless across runs; only the bucket store itself is
// durable. Fatal errors (identity, enumeration, sink bootstrap) abort before
// any bucket is touched; per-bucket errors are recorded against that bucket
// and the rest of the fleet is still processed.
package baseline
