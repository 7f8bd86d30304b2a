package ordered

import (
	"encoding/json"
	"testing"
)

func TestSetPreservesInsertionOrder(t *testing.T) {
	m := New[int]()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("m", 3)

	got := m.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	if got := m.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b]", got)
	}
	v, ok := m.Get("a")
	if !ok || v != 99 {
		t.Fatalf("Get(a) = %d, %v, want 99, true", v, ok)
	}
}

func TestMarshalJSONPreservesOrder(t *testing.T) {
	m := New[int]()
	m.Set("z", 1)
	m.Set("a", 2)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"z":1,"a":2}`
	if string(data) != want {
		t.Fatalf("Marshal = %s, want %s", data, want)
	}
}

func TestUnmarshalJSONPreservesFileOrder(t *testing.T) {
	m := New[int]()
	if err := json.Unmarshal([]byte(`{"b":1,"a":2,"c":3}`), m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := m.Keys()
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	m := New[string]()
	m.Set("third", "3")
	m.Set("first", "1")
	m.Set("second", "2")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out := New[string]()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out.Keys()) != 3 {
		t.Fatalf("got %d keys, want 3", len(out.Keys()))
	}
	for i, k := range m.Keys() {
		if out.Keys()[i] != k {
			t.Fatalf("order mismatch at %d: got %q want %q", i, out.Keys()[i], k)
		}
	}
}
