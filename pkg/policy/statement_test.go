package policy

import (
	"encoding/json"
	"testing"
)

const testBucket = "example-bucket"

func canonicalDoc(t *testing.T) *Document {
	t.Helper()
	return &Document{
		Version:   Version,
		Statement: Statements{DenyInsecureTransport(testBucket)},
	}
}

func TestClassifyApplied(t *testing.T) {
	if got := Classify(canonicalDoc(t), testBucket); got != ClassificationApplied {
		t.Fatalf("expected applied, got %s", got)
	}
}

func TestClassifyNilDocument(t *testing.T) {
	if got := Classify(nil, testBucket); got != ClassificationNotApplied {
		t.Fatalf("expected not_applied for nil document, got %s", got)
	}
}

func TestClassifyMissingSid(t *testing.T) {
	doc := &Document{
		Version: Version,
		Statement: Statements{{
			Sid:       "SomethingElse",
			Effect:    "Allow",
			Principal: json.RawMessage(`"*"`),
			Action:    NewScalar("s3:GetObject"),
			Resource:  NewScalar(ObjectsARN(testBucket)),
		}},
	}
	if got := Classify(doc, testBucket); got != ClassificationNotApplied {
		t.Fatalf("expected not_applied when the reserved sid is absent, got %s", got)
	}
}

func TestClassifyNeedsChange(t *testing.T) {
	mutate := []struct {
		name string
		fn   func(*Statement)
	}{
		{"wrong effect", func(st *Statement) { st.Effect = "Allow" }},
		{"narrow action", func(st *Statement) { st.Action = NewScalar("s3:GetObject") }},
		{"missing objects arn", func(st *Statement) { st.Resource = NewStringSet(BucketARN(testBucket)) }},
		{"missing bucket arn", func(st *Statement) { st.Resource = NewStringSet(ObjectsARN(testBucket)) }},
		{"wrong bucket", func(st *Statement) {
			st.Resource = NewStringSet(BucketARN("other"), ObjectsARN("other"))
		}},
		{"non-wildcard principal", func(st *Statement) {
			st.Principal = json.RawMessage(`{"AWS":"arn:aws:iam::123456789012:root"}`)
		}},
		{"wrong condition operator", func(st *Statement) {
			st.Condition = Condition{"StringEquals": {"aws:SecureTransport": json.RawMessage(`"false"`)}}
		}},
		{"wrong condition key", func(st *Statement) {
			st.Condition = Condition{"Bool": {"aws:ViaAWSService": json.RawMessage(`"false"`)}}
		}},
		{"condition true", func(st *Statement) {
			st.Condition = Condition{"Bool": {"aws:SecureTransport": json.RawMessage(`"true"`)}}
		}},
		{"no condition", func(st *Statement) { st.Condition = nil }},
	}
	for _, tc := range mutate {
		t.Run(tc.name, func(t *testing.T) {
			st := DenyInsecureTransport(testBucket)
			tc.fn(&st)
			doc := &Document{Version: Version, Statement: Statements{st}}
			if got := Classify(doc, testBucket); got != ClassificationNeedsChange {
				t.Fatalf("expected needs_change, got %s", got)
			}
		})
	}
}

func TestClassifyAcceptsSupersetAction(t *testing.T) {
	st := DenyInsecureTransport(testBucket)
	st.Action = NewStringSet("s3:*", "sts:*")
	doc := &Document{Version: Version, Statement: Statements{st}}
	if got := Classify(doc, testBucket); got != ClassificationApplied {
		t.Fatalf("expected applied for superset action, got %s", got)
	}
}

func TestClassifyAcceptsBooleanCondition(t *testing.T) {
	st := DenyInsecureTransport(testBucket)
	st.Condition = Condition{"Bool": {"aws:SecureTransport": json.RawMessage(`false`)}}
	doc := &Document{Version: Version, Statement: Statements{st}}
	if got := Classify(doc, testBucket); got != ClassificationApplied {
		t.Fatalf("expected applied for boolean condition value, got %s", got)
	}
}

func TestClassifyAcceptsStructuredWildcardPrincipal(t *testing.T) {
	st := DenyInsecureTransport(testBucket)
	st.Principal = json.RawMessage(`{"AWS":"*"}`)
	doc := &Document{Version: Version, Statement: Statements{st}}
	if got := Classify(doc, testBucket); got != ClassificationApplied {
		t.Fatalf("expected applied for {\"AWS\":\"*\"} principal, got %s", got)
	}
}

func TestClassifyDuplicateSids(t *testing.T) {
	broken := DenyInsecureTransport(testBucket)
	broken.Action = NewScalar("s3:GetObject")
	doc := &Document{
		Version:   Version,
		Statement: Statements{DenyInsecureTransport(testBucket), broken},
	}
	if got := Classify(doc, testBucket); got != ClassificationNeedsChange {
		t.Fatalf("expected needs_change for duplicate reserved sids, got %s", got)
	}
}

func TestClassifyIgnoresForeignStatements(t *testing.T) {
	doc := canonicalDoc(t)
	doc.Statement = append(Statements{{
		Sid:       "Foreign",
		Effect:    "Allow",
		Principal: json.RawMessage(`{"Service":"cloudtrail.amazonaws.com"}`),
		Action:    NewScalar("s3:PutObject"),
		Resource:  NewScalar(ObjectsARN(testBucket)),
	}}, doc.Statement...)
	if got := Classify(doc, testBucket); got != ClassificationApplied {
		t.Fatalf("expected applied alongside foreign statements, got %s", got)
	}
}

func TestLogDeliveryStatement(t *testing.T) {
	st := LogDeliveryStatement("access-logs-123456789012", "123456789012")
	if st.Sid != LogDeliverySid {
		t.Errorf("unexpected sid %q", st.Sid)
	}
	if st.Effect != "Allow" {
		t.Errorf("unexpected effect %q", st.Effect)
	}
	if !st.Action.Contains("s3:PutObject") {
		t.Errorf("expected s3:PutObject action, got %v", st.Action.Values())
	}
	if !st.Resource.Contains("arn:aws:s3:::access-logs-123456789012/*") {
		t.Errorf("unexpected resource %v", st.Resource.Values())
	}
	var principal map[string]string
	if err := json.Unmarshal(st.Principal, &principal); err != nil {
		t.Fatalf("principal unmarshal: %v", err)
	}
	if principal["Service"] != "logging.s3.amazonaws.com" {
		t.Errorf("unexpected principal %v", principal)
	}
}
