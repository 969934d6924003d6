// Package policy models S3 bucket policy documents in their IAM wire format
// and owns the managed DenyInsecureTransport statement: how to recognize it,
// how to classify a document against it, and how to merge it into an existing
// document without disturbing any other statement.
//
// The wire format is deliberately loose: Action and Resource may be a single
// string or a list, Statement may be a single object or an array, and
// Condition values may be strings, booleans, or lists. The types here accept
// all of those shapes and round-trip statements this tool does not own in the
// shape they arrived in, because the bucket policy API has full-document
// replace semantics and a rewrite must never change foreign statements.
package policy
