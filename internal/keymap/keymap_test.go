package keymap

import (
	"slices"
	"testing"
)

func TestAllBindingsAreUnique(t *testing.T) {
	seen := map[string]Action{}
	for _, b := range All {
		if b.Description == "" {
			t.Errorf("binding %q has no description", b.Action)
		}
		for _, k := range b.Keys {
			if prev, ok := seen[k]; ok && prev != b.Action {
				t.Errorf("key %q bound to both %q and %q", k, prev, b.Action)
			}
			seen[k] = b.Action
		}
	}
}

func TestRemap(t *testing.T) {
	got, err := Remap(All, map[string][]string{
		"stop":       {"S", "x"},
		"Seek_Back ": {"j"},
	})
	if err != nil {
		t.Fatalf("Remap() error: %v", err)
	}
	r := NewResolver(got)

	if a := r.Resolve("x"); a != ActionStop {
		t.Errorf("Resolve(x) = %q, want stop", a)
	}
	if a := r.Resolve("s"); a != "" {
		t.Errorf("Resolve(s) = %q, want unbound", a)
	}
	if a := r.Resolve("j"); a != ActionSeekBack {
		t.Errorf("Resolve(j) = %q, want seek_back", a)
	}
	if keys := r.KeysFor(ActionSeekExact); len(keys) != 0 {
		t.Errorf("seek_exact keeps %v after losing x", keys)
	}
	if slices.ContainsFunc(r.ByContext("playback"), func(b Binding) bool { return b.Action == ActionSeekExact }) {
		t.Error("unbound seek_exact still listed for help")
	}
	if !slices.Equal(All[3].Keys, []string{"s"}) {
		t.Errorf("Remap modified the input: %v", All[3].Keys)
	}
}

func TestRemap_Errors(t *testing.T) {
	tests := []struct {
		name string
		keys map[string][]string
	}{
		{"unknown action", map[string][]string{"rewind": {"r"}}},
		{"empty keys", map[string][]string{"stop": {""}}},
		{"conflict", map[string][]string{"stop": {"z"}, "help": {"z"}}},
		{"ctrl+c", map[string][]string{"help": {"ctrl+c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Remap(All, tt.keys); err == nil {
				t.Error("Remap() succeeded, want error")
			}
		})
	}
}

func TestRemap_NoOverrides(t *testing.T) {
	got, err := Remap(All, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(All) {
		t.Fatalf("len = %d, want %d", len(got), len(All))
	}
	got[0].Keys[0] = "changed"
	if All[0].Keys[0] != "q" {
		t.Error("Remap result shares key slices with its input")
	}
}
