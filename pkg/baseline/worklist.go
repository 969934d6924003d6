package baseline

import "fmt"

// ResolveWorklist derives the set of buckets to reconcile: the enumeration
// minus the exclusion set minus the log sink, deduplicated, with the
// enumeration order preserved. The log sink is excluded by construction so
// it is never reconciled against itself.
func ResolveWorklist(buckets, excludes []string, logSink string) []string {
	excluded := make(map[string]bool, len(excludes)+1)
	for _, name := range excludes {
		excluded[name] = true
	}
	excluded[logSink] = true

	seen := make(map[string]bool, len(buckets))
	worklist := make([]string, 0, len(buckets))
	for _, name := range buckets {
		if excluded[name] || seen[name] {
			continue
		}
		seen[name] = true
		worklist = append(worklist, name)
	}
	return worklist
}

// SelectBucket narrows the worklist to a single bucket. It returns a
// not-found error when the bucket is absent from the worklist, naming the
// reason: excluded, the log sink itself, or simply unknown to the account.
func SelectBucket(worklist, excludes []string, logSink, bucket string) ([]string, error) {
	for _, name := range worklist {
		if name == bucket {
			return []string{bucket}, nil
		}
	}
	for _, name := range excludes {
		if name == bucket {
			return nil, NewNotFoundError(bucket, "bucket is excluded from reconciliation")
		}
	}
	if bucket == logSink {
		return nil, NewNotFoundError(bucket, fmt.Sprintf("bucket is the log sink %s and is never reconciled", logSink))
	}
	return nil, NewNotFoundError(bucket, "bucket not found in account")
}
