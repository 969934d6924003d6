package baseline

import (
	"reflect"
	"testing"
)

func TestResolveWorklist(t *testing.T) {
	got := ResolveWorklist(
		[]string{"a", "b", "access-logs-123456789012", "c"},
		[]string{"b"},
		"access-logs-123456789012",
	)
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestResolveWorklistDeduplicates(t *testing.T) {
	got := ResolveWorklist([]string{"a", "b", "a", "c", "b"}, nil, "sink")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestResolveWorklistEmpty(t *testing.T) {
	if got := ResolveWorklist(nil, []string{"x"}, "sink"); len(got) != 0 {
		t.Fatalf("expected empty worklist, got %v", got)
	}
}

func TestSelectBucket(t *testing.T) {
	worklist := []string{"a", "c"}
	excludes := []string{"b"}
	sink := "access-logs-123456789012"

	got, err := SelectBucket(worklist, excludes, sink, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("want [a], got %v", got)
	}

	cases := []struct {
		name   string
		bucket string
	}{
		{"excluded bucket", "b"},
		{"log sink", sink},
		{"unknown bucket", "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SelectBucket(worklist, excludes, sink, tc.bucket); !IsNotFound(err) {
				t.Fatalf("expected not-found error, got %v", err)
			}
		})
	}
}
