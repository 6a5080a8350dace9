package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type addItem struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"","quantity":0}`))
	var dest addItem
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["sku"] != "is required" {
		t.Fatalf("unexpected sku message %q", details["sku"])
	}
	if details["quantity"] != "must be greater than or equal to 1" {
		t.Fatalf("unexpected quantity message %q", details["quantity"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"A","quantity":1,"coupon":"x"}`))
	var dest addItem
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePageQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=30&sort=Price-Asc&cursor=abc", nil)
	q, err := ParsePageQuery(req, 12)
	if err != nil || q.Limit != 30 || q.Sort != "price-asc" || q.Cursor != "abc" {
		t.Fatalf("unexpected query %+v %v", q, err)
	}

	q, err = ParsePageQuery(httptest.NewRequest(http.MethodGet, "/", nil), 12)
	if err != nil || q.Limit != 12 {
		t.Fatalf("expected default 12, got %+v %v", q, err)
	}

	for _, raw := range []string{"/?limit=x", "/?limit=0", "/?limit=1000"} {
		if _, err := ParsePageQuery(httptest.NewRequest(http.MethodGet, raw, nil), 12); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", raw, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  CLS-BLA-SM  ", 6); got != "CLS-BL" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("caf\u00e9\n", 4); got != "caf" {
		t.Fatalf("expected cut before multi-byte rune, got %q", got)
	}
}

type tagged struct {
	SKU        string `json:"sku" validate:"required,sku"`
	Collection string `json:"collection" validate:"required,collection"`
}

func TestDomainTags(t *testing.T) {
	ok := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"cls-bla-sm","collection":"t-shirts"}`))
	var dest tagged
	if err := DecodeJSONBody(ok, &dest); err != nil {
		t.Fatalf("expected valid body, got %v", err)
	}

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"CLS--SM","collection":"products"}`))
	err := DecodeJSONBody(bad, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["sku"] == "" || details["collection"] != "must be a product collection" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var dest tagged
	err := DecodeJSONBody(req, &dest)
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "request body required" {
		t.Fatalf("expected body required, got %v", err)
	}
}
