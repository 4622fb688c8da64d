package validate

import "testing"

func TestRequired(t *testing.T) {
	if Required("f", "value") != nil {
		t.Fatal("non-empty value rejected")
	}
	for _, v := range []string{"", "   "} {
		ef := Required("f", v)
		if ef == nil || ef.Field != "f" {
			t.Fatalf("Required(%q) = %+v", v, ef)
		}
	}
}

func TestDigits(t *testing.T) {
	if Digits("pin", "1234", 4) != nil {
		t.Fatal("valid pin rejected")
	}
	for _, v := range []string{"123", "12345", "12a4", ""} {
		if Digits("pin", v, 4) == nil {
			t.Fatalf("Digits(%q) accepted", v)
		}
	}
}

func TestErrsMessage(t *testing.T) {
	e := Errs{{Field: "a", Msg: "required"}, {Field: "b", Msg: "must be 4 digits"}}
	if got := e.Error(); got != "a: required; b: must be 4 digits" {
		t.Fatalf("Error() = %q", got)
	}
}
