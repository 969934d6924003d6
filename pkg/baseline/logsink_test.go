package baseline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

func TestEnsureLogSinkAlreadyExists(t *testing.T) {
	sink := "access-logs-" + testAccount
	client := newFakeClient(sink)

	got, err := EnsureLogSink(context.Background(), client, testAccount, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sink {
		t.Errorf("unexpected sink name %q", got)
	}
	if client.writeCount() != 0 {
		t.Fatalf("existing sink must not trigger mutating calls, got %d", client.writeCount())
	}
}

func TestEnsureLogSinkDryRun(t *testing.T) {
	client := newFakeClient()

	got, err := EnsureLogSink(context.Background(), client, testAccount, true, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "access-logs-"+testAccount {
		t.Errorf("unexpected sink name %q", got)
	}
	if client.writeCount() != 0 {
		t.Fatalf("dry-run must not create the sink, got %d writes", client.writeCount())
	}
}

func TestEnsureLogSinkCreates(t *testing.T) {
	client := newFakeClient()
	sink := "access-logs-" + testAccount

	got, err := EnsureLogSink(context.Background(), client, testAccount, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != sink {
		t.Errorf("unexpected sink name %q", got)
	}
	if len(client.creates) != 1 || client.creates[0] != sink {
		t.Fatalf("expected one bucket creation for %s, got %v", sink, client.creates)
	}

	doc := client.policies[sink]
	if doc == nil {
		t.Fatal("expected a policy on the new sink")
	}
	if len(doc.Statement) != 2 {
		t.Fatalf("expected exactly two statements, got %d", len(doc.Statement))
	}
	if doc.Statement[0].Sid != policy.LogDeliverySid {
		t.Errorf("expected log delivery statement first, got %q", doc.Statement[0].Sid)
	}
	if doc.Statement[1].Sid != policy.DenySid {
		t.Errorf("expected managed deny statement last, got %q", doc.Statement[1].Sid)
	}
	if got := policy.Classify(doc, sink); got != policy.ClassificationApplied {
		t.Errorf("sink policy must classify applied for the sink itself, got %s", got)
	}
}

func TestEnsureLogSinkIdempotent(t *testing.T) {
	client := newFakeClient()
	ctx := context.Background()

	if _, err := EnsureLogSink(ctx, client, testAccount, false, zerolog.Nop()); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	writes := client.writeCount()
	if _, err := EnsureLogSink(ctx, client, testAccount, false, zerolog.Nop()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if client.writeCount() != writes {
		t.Fatalf("second ensure performed mutating calls: %d -> %d", writes, client.writeCount())
	}
}
