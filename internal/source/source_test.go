package source

import "testing"

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"lib.rs", KindRust},
		{"nested/dir/lib.rs", KindRust},
		{"module.c", KindCFamily},
		{"module.cpp", KindCFamily},
		{"module.py", KindUnsupported},
		{"module.wasm", KindUnsupported},
		{"module", KindUnsupported},
		{"", KindUnsupported},
		{"module.RS", KindUnsupported}, // extensions are case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, want := KindOf(tt.name), tt.want; got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestKindFromString(t *testing.T) {
	t.Run("known kind", func(t *testing.T) {
		kind, known := KindFromString("rust")
		if !known {
			t.Error("got unknown")
		}
		if got, want := kind, KindRust; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, known := KindFromString("fortran")
		if known {
			t.Error("got known")
		}
	})
}
