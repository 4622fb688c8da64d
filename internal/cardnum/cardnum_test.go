package cardnum

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"4532015112830366", true},
		{"4532015112830367", false}, // checksum off by one
		{"4111111111111111", true},
		{"4111 1111 1111 1111", true}, // separators stripped
		{"4532-0151-1283-0366", true},
		{"453201511283036", false},   // 15 digits
		{"45320151128303660", false}, // 17 digits
		{"", false},
		{"abcd efgh ijkl mnop", false},
		{"0000000000000000", true}, // degenerate but Luhn-valid
	}
	for _, c := range cases {
		if got := Valid(c.in); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if !Valid("4532015112830366") {
			t.Fatal("validation flipped between calls")
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("4532-0151 1283a0366"); got != "4532015112830366" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestMask(t *testing.T) {
	if got := Mask("4532015112830366"); got != "4532-****-****-0366" {
		t.Fatalf("Mask = %q", got)
	}
	// non-16-digit input passes through untouched
	if got := Mask("1234"); got != "1234" {
		t.Fatalf("Mask short input = %q", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format("4532015112830366"); got != "4532-0151-1283-0366" {
		t.Fatalf("Format = %q", got)
	}
}
