package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 401, "pin_incorrect", "incorrect PIN", map[string]int{"remaining_attempts": 2})

	if rec.Code != 401 {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}

	var got struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Details struct {
			RemainingAttempts int `json:"remaining_attempts"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Code != "pin_incorrect" || got.Error != "incorrect PIN" || got.Details.RemainingAttempts != 2 {
		t.Fatalf("body = %+v", got)
	}
}

func TestWriteErrorOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 404, "card_not_found", "card not found", nil)

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["details"]; ok {
		t.Fatal("empty details serialized")
	}
}
