package core

import (
	"reflect"
	"testing"
)

func TestNormalizeArguments(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"map passes through", map[string]any{"k": 1}, map[string]any{"k": 1}},
		{"object string parses", `{"k": "v"}`, map[string]any{"k": "v"}},
		{"array string stays raw", `[1, 2]`, `[1, 2]`},
		{"garbage string stays raw", `not json`, `not json`},
		{"nil becomes empty map", nil, map[string]any{}},
		{"number becomes empty map", 42, map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeArguments(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("NormalizeArguments(%#v) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestArgumentsMap(t *testing.T) {
	if m, ok := ArgumentsMap(map[string]any{"k": 1}); !ok || m["k"] != 1 {
		t.Fatalf("map case: %v %v", m, ok)
	}
	if m, ok := ArgumentsMap(nil); !ok || len(m) != 0 {
		t.Fatalf("nil case: %v %v", m, ok)
	}
	if _, ok := ArgumentsMap("raw string"); ok {
		t.Fatal("raw string should not reduce to a map")
	}
}

func TestEventUsage(t *testing.T) {
	u := &TokenUsage{InputTokens: Count(1), OutputTokens: Count(2)}
	if EventUsage(StreamEnd{Usage: u}) != u {
		t.Fatal("StreamEnd usage not surfaced")
	}
	if EventUsage(OtherEvent{Usage: u}) != u {
		t.Fatal("OtherEvent usage not surfaced")
	}
	if EventUsage(MessageDelta{Delta: "x"}) != nil {
		t.Fatal("MessageDelta should not carry usage")
	}
}
