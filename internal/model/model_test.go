package model

import (
	"encoding/json"
	"testing"
)

func TestNewCoordRange(t *testing.T) {
	if _, err := NewCoord(91, 0); err == nil {
		t.Fatal("expected error for lat out of range")
	}
	if _, err := NewCoord(0, 181); err == nil {
		t.Fatal("expected error for lon out of range")
	}
	c, err := NewCoord(48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lat != 48.8566 || c.Lon != 2.3522 {
		t.Fatalf("unexpected coord: %+v", c)
	}
}

func TestComposeAddrLabelIdempotent(t *testing.T) {
	label := ComposeAddrLabel("20", "avenue de Segur", "Paris")
	if label != "20 avenue de Segur (Paris)" {
		t.Fatalf("unexpected label: %q", label)
	}
	// Rebuilding from the same parts must yield the same label.
	again := ComposeAddrLabel("20", "avenue de Segur", "Paris")
	if label != again {
		t.Fatalf("label composition not idempotent: %q != %q", label, again)
	}
}

func TestNewAddrComposesLabelFromStreetAdmins(t *testing.T) {
	coord, _ := NewCoord(48.85, 2.35)
	street, err := NewStreet("street:1", "avenue de Segur", coord, []AdminRef{
		{ID: "admin:paris", Level: 8, Name: "Paris", ZoneType: ZoneCity},
	}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addr, err := NewAddr("addr:1", "20", *street, coord, []string{"75007"}, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Label != "20 avenue de Segur (Paris)" {
		t.Fatalf("unexpected label: %q", addr.Label)
	}
	if addr.DocKind() != KindAddr {
		t.Fatalf("unexpected kind: %v", addr.DocKind())
	}
}

func TestNewAdminRejectsNonPositiveLevel(t *testing.T) {
	coord, _ := NewCoord(0, 0)
	if _, err := NewAdmin("admin:x", "X", 0, ZoneCountry, coord, nil, 1.0); err == nil {
		t.Fatal("expected error for non-positive level")
	}
}

func TestDecodeDocumentRoundTripsAddr(t *testing.T) {
	coord, _ := NewCoord(48.85, 2.35)
	street, _ := NewStreet("street:1", "avenue de Segur", coord, nil, 1.0)
	addr, err := NewAddr("addr:1", "20", *street, coord, []string{"75007"}, 1.0)
	if err != nil {
		t.Fatalf("NewAddr: %v", err)
	}
	raw, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if doc.DocKind() != KindAddr || doc.DocID() != "addr:1" {
		t.Fatalf("unexpected decode: %+v", doc)
	}
}

func TestDecodeDocumentRejectsUnknownType(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{"type":"bogus"}`)); err == nil {
		t.Fatal("expected error for unknown type discriminator")
	}
}
