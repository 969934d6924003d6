package policy

// Merge produces the exact document to write back for a bucket: every
// statement whose Sid is not the reserved deny Sid is carried over in its
// original relative order, then one freshly built canonical statement is
// appended last. Removing by Sid also covers malformed documents where the
// reserved Sid appears more than once.
//
// A nil doc (no policy attached) seeds an empty document with the standard
// policy language version. The input document is never mutated; the bucket
// policy API replaces the full document, so the caller always submits the
// complete result.
func Merge(doc *Document, bucket string) *Document {
	out := &Document{Version: Version}
	if doc != nil {
		if doc.Version != "" {
			out.Version = doc.Version
		}
		out.ID = doc.ID
		out.Statement = make(Statements, 0, len(doc.Statement)+1)
		for _, st := range doc.Statement {
			if st.Sid == DenySid {
				continue
			}
			out.Statement = append(out.Statement, st)
		}
	}
	out.Statement = append(out.Statement, DenyInsecureTransport(bucket))
	return out
}
