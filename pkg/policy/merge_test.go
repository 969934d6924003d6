package policy

import (
	"encoding/json"
	"testing"
)

func foreignStatement(sid string) Statement {
	return Statement{
		Sid:       sid,
		Effect:    "Allow",
		Principal: json.RawMessage(`{"AWS":"arn:aws:iam::123456789012:role/app"}`),
		Action:    NewScalar("s3:GetObject"),
		Resource:  NewScalar(ObjectsARN(testBucket)),
	}
}

func TestMergeNilDocument(t *testing.T) {
	out := Merge(nil, testBucket)
	if out.Version != Version {
		t.Errorf("expected version %s, got %s", Version, out.Version)
	}
	if len(out.Statement) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(out.Statement))
	}
	if out.Statement[0].Sid != DenySid {
		t.Errorf("expected managed statement, got sid %q", out.Statement[0].Sid)
	}
}

func TestMergePreservesForeignStatements(t *testing.T) {
	doc := &Document{
		Version:   Version,
		Statement: Statements{foreignStatement("A"), foreignStatement("B"), foreignStatement("C")},
	}
	out := Merge(doc, testBucket)
	if len(out.Statement) != 4 {
		t.Fatalf("expected N+1 statements, got %d", len(out.Statement))
	}
	for i, sid := range []string{"A", "B", "C"} {
		want, _ := json.Marshal(doc.Statement[i])
		got, _ := json.Marshal(out.Statement[i])
		if string(want) != string(got) {
			t.Errorf("statement %s changed: want %s got %s", sid, want, got)
		}
	}
	if out.Statement[3].Sid != DenySid {
		t.Errorf("managed statement must be last, got sid %q", out.Statement[3].Sid)
	}
}

func TestMergeRemovesEveryManagedSid(t *testing.T) {
	broken := DenyInsecureTransport(testBucket)
	broken.Action = NewScalar("s3:GetObject")
	doc := &Document{
		Version:   Version,
		Statement: Statements{broken, foreignStatement("Keep"), DenyInsecureTransport(testBucket)},
	}
	out := Merge(doc, testBucket)
	if len(out.Statement) != 2 {
		t.Fatalf("expected duplicates collapsed to one managed statement, got %d statements", len(out.Statement))
	}
	if out.Statement[0].Sid != "Keep" {
		t.Errorf("expected foreign statement first, got %q", out.Statement[0].Sid)
	}
	count := 0
	for _, st := range out.Statement {
		if st.Sid == DenySid {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one managed statement, got %d", count)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	doc := &Document{
		Version:   Version,
		Statement: Statements{foreignStatement("A"), DenyInsecureTransport(testBucket)},
	}
	before, _ := json.Marshal(doc)
	_ = Merge(doc, testBucket)
	after, _ := json.Marshal(doc)
	if string(before) != string(after) {
		t.Fatalf("input mutated:\nbefore %s\nafter  %s", before, after)
	}
}

func TestMergeIsIdempotentUnderClassify(t *testing.T) {
	inputs := []*Document{
		nil,
		{Version: Version, Statement: Statements{foreignStatement("A")}},
		{Version: Version, Statement: Statements{DenyInsecureTransport("wrong-bucket")}},
	}
	for _, doc := range inputs {
		out := Merge(doc, testBucket)
		if got := Classify(out, testBucket); got != ClassificationApplied {
			t.Errorf("merge output must classify applied, got %s", got)
		}
		again := Merge(out, testBucket)
		if len(again.Statement) != len(out.Statement) {
			t.Errorf("re-merge grew the document: %d -> %d", len(out.Statement), len(again.Statement))
		}
	}
}

func TestMergePreservesVersionAndID(t *testing.T) {
	doc := &Document{Version: "2008-10-17", ID: "legacy", Statement: Statements{foreignStatement("A")}}
	out := Merge(doc, testBucket)
	if out.Version != "2008-10-17" || out.ID != "legacy" {
		t.Errorf("expected version/id preserved, got %s/%s", out.Version, out.ID)
	}
}
