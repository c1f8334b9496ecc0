package snapshots

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeRows_BareMatrix(t *testing.T) {
	header, rows, err := DecodeRows([]byte(`[["Solicitud","Válido de"],[100, 46023],["200","15/01/2026"]]`))
	if err != nil {
		t.Fatalf("DecodeRows returned error: %v", err)
	}
	if len(header) != 2 || header[0] != "Solicitud" {
		t.Fatalf("unexpected header %#v", header)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != float64(46023) {
		t.Fatalf("expected serial kept as number, got %#v", rows[0][1])
	}
}

func TestDecodeRows_WrappedWithIsolations(t *testing.T) {
	header, rows, err := DecodeRows([]byte(`{"rows":[["Solicitud"],["100"]],"aislamientos":{"100":[{"numero":"3041727"}]}}`))
	if err != nil {
		t.Fatalf("DecodeRows returned error: %v", err)
	}
	if len(header) != 1 || len(rows) != 1 {
		t.Fatalf("unexpected decode: header=%#v rows=%#v", header, rows)
	}
}

func TestDecodeRows_Invalid(t *testing.T) {
	for _, in := range []string{``, `"x"`, `[]`, `{"rows":[]}`, `[1,2`} {
		if _, _, err := DecodeRows([]byte(in)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload for %q, got %v", in, err)
		}
	}
}

func TestEncodeRows_RoundTripsHeader(t *testing.T) {
	b, err := EncodeRows([]string{"Solicitud", "Texto breve"}, [][]any{{"100", "Bomba"}})
	if err != nil {
		t.Fatalf("EncodeRows returned error: %v", err)
	}
	header, rows, err := DecodeRows(b)
	if err != nil {
		t.Fatalf("DecodeRows returned error: %v", err)
	}
	if header[1] != "Texto breve" || rows[0][1] != "Bomba" {
		t.Fatalf("unexpected decode: header=%#v rows=%#v", header, rows)
	}
}

func TestFromPayload_UnreadableDataHasNoHeader(t *testing.T) {
	snap := FromPayload("s1", time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC), []byte(`"not rows"`))
	if snap.ID != "s1" || snap.Header != nil || snap.Rows != nil {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}
