package spawn

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"patrol", KindPatrol, false},
		{"escort", KindEscort, false},
		{"", 0, true},
		{"guard", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if KindPatrol.String() != "patrol" || KindEscort.String() != "escort" {
		t.Error("kind names should round-trip with ParseKind")
	}
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("Kind(42).String() = %q, want %q", got, "unknown")
	}
}
