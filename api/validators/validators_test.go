package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/delizzia/pos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type lineRequest struct {
	MenuItemID string           `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int              `json:"quantity" validate:"gte=1"`
	Fee        decimal.Decimal  `json:"fee" validate:"gte=0"`
	Margin     *decimal.Decimal `json:"margin" validate:"omitempty,gt=0,lt=1"`
}

func decode(body string) error {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest lineRequest
	return DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBodyValidatesDecimals(t *testing.T) {
	ok := `{"menu_item_id":"0b7f2d8e-8f4a-4b43-9d1e-0b5a3c2e1f10","quantity":2,"fee":"1.50","margin":"0.30"}`
	if err := decode(ok); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}

	cases := map[string]string{
		"fee":      `{"menu_item_id":"0b7f2d8e-8f4a-4b43-9d1e-0b5a3c2e1f10","quantity":2,"fee":"-1"}`,
		"margin":   `{"menu_item_id":"0b7f2d8e-8f4a-4b43-9d1e-0b5a3c2e1f10","quantity":2,"fee":0,"margin":1.5}`,
		"quantity": `{"menu_item_id":"0b7f2d8e-8f4a-4b43-9d1e-0b5a3c2e1f10","quantity":0,"fee":0}`,
	}
	for field, body := range cases {
		err := decode(body)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		details, _ := typed.Details().(map[string]string)
		if _, ok := details[field]; !ok {
			t.Fatalf("%s: expected field in details, got %v", field, typed.Details())
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	err := decode(`{"menu_item_id":"0b7f2d8e-8f4a-4b43-9d1e-0b5a3c2e1f10","quantity":1,"fee":0,"tip":2}`)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryTime(t *testing.T) {
	loc := time.FixedZone("ECT", -5*3600)
	req := httptest.NewRequest(http.MethodGet, "/?from=2024-03-04&to=2024-03-04&at=2024-03-04T10:00:00Z&bad=yesterday", nil)

	from, err := ParseQueryTime(req, "from", loc, false)
	if err != nil || !from.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected from %v (%v)", from, err)
	}
	to, err := ParseQueryTime(req, "to", loc, true)
	if err != nil || !to.Equal(time.Date(2024, 3, 4, 23, 59, 59, 999999999, loc)) {
		t.Fatalf("unexpected to %v (%v)", to, err)
	}
	at, err := ParseQueryTime(req, "at", loc, true)
	if err != nil || !at.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected instant %v (%v)", at, err)
	}
	if missing, err := ParseQueryTime(req, "missing", loc, false); err != nil || missing != nil {
		t.Fatalf("expected nil for missing param")
	}
	if _, err := ParseQueryTime(req, "bad", loc, false); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?days=400&horizon=x", nil)
	if v, err := ParseQueryInt(req, "limit", 25, 1, 100); err != nil || v != 25 {
		t.Fatalf("expected default, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "days", 30, 1, 365); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := ParseQueryInt(req, "horizon", 7, 1, 90); err == nil {
		t.Fatalf("expected numeric error")
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?target_margin=0.35&bad=abc", nil)
	d, err := ParseQueryDecimal(req, "target_margin")
	if err != nil || d == nil || !d.Equal(decimal.RequireFromString("0.35")) {
		t.Fatalf("unexpected decimal %v (%v)", d, err)
	}
	if _, err := ParseQueryDecimal(req, "bad"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  Jalapeño  ", 8); got != "Jalapeño" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("Piña colada", 4); got != "Piña" {
		t.Fatalf("unexpected %q", got)
	}
}
