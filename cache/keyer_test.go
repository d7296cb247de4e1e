package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Deterministic(t *testing.T) {
	keyer := NewDefaultKeyer()
	key := Key{VideoID: "v1", Quality: "720p"}

	first, err := keyer.Derive(key)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	second, err := keyer.Derive(key)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if first != second {
		t.Errorf("Derive not deterministic: %q vs %q", first, second)
	}
}

func TestDefaultKeyer_Format(t *testing.T) {
	keyer := NewDefaultKeyer()

	got, err := keyer.Derive(Key{VideoID: "v1", Quality: "720p"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !strings.HasPrefix(got, "media:") {
		t.Errorf("key %q should start with media:", got)
	}
	if hash := strings.TrimPrefix(got, "media:"); len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
}

func TestDefaultKeyer_Distinct(t *testing.T) {
	keyer := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b Key
	}{
		{"different quality", Key{"v1", "720p"}, Key{"v1", "1080p"}},
		{"different id", Key{"v1", "720p"}, Key{"v2", "720p"}},
		{"separator shift", Key{"a:b", "c"}, Key{"a", "b:c"}},
		{"swapped parts", Key{"low", "x"}, Key{"x", "low"}},
		{"empty parts", Key{"", "x"}, Key{"x", ""}},
		{"invalid utf-8 ids", Key{"a\xff", "low"}, Key{"a\xfe", "low"}},
		{"invalid utf-8 vs replacement rune", Key{"a\xff", "low"}, Key{"a\uFFFD", "low"}},
		{"invalid utf-8 quality", Key{"v1", "\x80"}, Key{"v1", "\x81"}},
		{"embedded length bytes", Key{"ab", ""}, Key{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, _ := keyer.Derive(tt.a)
			kb, _ := keyer.Derive(tt.b)
			if ka == kb {
				t.Errorf("%v and %v derived the same key %q", tt.a, tt.b, ka)
			}
		})
	}
}

func TestKey_String(t *testing.T) {
	got := Key{VideoID: "x", Quality: "low"}.String()
	if got != `"x"@"low"` {
		t.Errorf("String() = %s", got)
	}
}
