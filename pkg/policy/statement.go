package policy

import (
	"encoding/json"
	"fmt"
)

// DenySid is the reserved Sid identifying the managed deny-insecure-transport
// statement. Any statement carrying this Sid belongs to this tool.
const DenySid = "DenyInsecureTransport"

// LogDeliverySid is the Sid of the allow statement granting the S3 logging
// service write access on the log-sink bucket.
const LogDeliverySid = "S3ServerAccessLogsPolicy"

// denyAction is the action the managed statement must cover.
const denyAction = "s3:*"

// BucketARN returns the ARN of the bucket itself.
func BucketARN(bucket string) string {
	return fmt.Sprintf("arn:aws:s3:::%s", bucket)
}

// ObjectsARN returns the ARN covering every object in the bucket.
func ObjectsARN(bucket string) string {
	return fmt.Sprintf("arn:aws:s3:::%s/*", bucket)
}

// DenyInsecureTransport builds the canonical managed statement for a bucket:
// deny all S3 actions for every principal when the request is not made over
// TLS, on both the bucket and its objects.
func DenyInsecureTransport(bucket string) Statement {
	return Statement{
		Sid:       DenySid,
		Effect:    "Deny",
		Principal: json.RawMessage(`"*"`),
		Action:    NewScalar(denyAction),
		Resource:  NewStringSet(BucketARN(bucket), ObjectsARN(bucket)),
		Condition: Condition{
			"Bool": {
				"aws:SecureTransport": json.RawMessage(`"false"`),
			},
		},
	}
}

// LogDeliveryStatement builds the allow statement that lets the S3 server
// access logging service write log objects into the sink bucket, scoped to
// deliveries originating from the owning account.
func LogDeliveryStatement(sink, accountID string) Statement {
	principal, _ := json.Marshal(map[string]string{"Service": "logging.s3.amazonaws.com"})
	source, _ := json.Marshal(accountID)
	return Statement{
		Sid:       LogDeliverySid,
		Effect:    "Allow",
		Principal: principal,
		Action:    NewStringSet("s3:PutObject"),
		Resource:  NewScalar(ObjectsARN(sink)),
		Condition: Condition{
			"StringEquals": {
				"aws:SourceAccount": source,
			},
		},
	}
}

// Classification is the compliance state of a document with respect to the
// managed statement.
type Classification string

const (
	// ClassificationApplied indicates exactly one managed statement exists
	// and it matches the canonical template.
	ClassificationApplied Classification = "applied"

	// ClassificationNeedsChange indicates a managed statement exists but is
	// incomplete, or the reserved Sid appears more than once.
	ClassificationNeedsChange Classification = "needs_change"

	// ClassificationNotApplied indicates no statement carries the reserved
	// Sid, or there is no policy document at all.
	ClassificationNotApplied Classification = "not_applied"
)

// Classify determines the compliance state of doc for the given bucket.
// A nil doc means no policy is attached.
func Classify(doc *Document, bucket string) Classification {
	if doc == nil {
		return ClassificationNotApplied
	}
	matches := 0
	complete := false
	for i := range doc.Statement {
		if doc.Statement[i].Sid != DenySid {
			continue
		}
		matches++
		if isCanonicalDeny(&doc.Statement[i], bucket) {
			complete = true
		}
	}
	switch {
	case matches == 0:
		return ClassificationNotApplied
	case matches == 1 && complete:
		return ClassificationApplied
	default:
		// Duplicate Sids are operator error, not a fault: the merge step
		// removes every match and re-appends one canonical statement.
		return ClassificationNeedsChange
	}
}

// isCanonicalDeny checks every required field of the managed statement.
// Action is a superset check (the statement may grant more than s3:*, which
// cannot weaken a deny); everything else must match the template.
func isCanonicalDeny(st *Statement, bucket string) bool {
	if st.Effect != "Deny" {
		return false
	}
	if !principalIsWildcard(st.Principal) {
		return false
	}
	if !st.Action.Contains(denyAction) {
		return false
	}
	if !st.Resource.ContainsAll(BucketARN(bucket), ObjectsARN(bucket)) {
		return false
	}
	return secureTransportFalse(st.Condition)
}

// principalIsWildcard reports whether the principal is "*" or {"AWS": "*"}.
func principalIsWildcard(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "*"
	}
	var m map[string]StringSet
	if err := json.Unmarshal(raw, &m); err == nil {
		return m["AWS"].Contains("*")
	}
	return false
}

// secureTransportFalse reports whether the condition block is exactly the
// Bool aws:SecureTransport == false test. The value may be the JSON string
// "false" or a bare boolean; both occur in stored policies.
func secureTransportFalse(cond Condition) bool {
	boolBlock, ok := cond["Bool"]
	if !ok {
		return false
	}
	raw, ok := boolBlock["aws:SecureTransport"]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "false"
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return !b
	}
	return false
}
