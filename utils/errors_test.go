package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorResponseHidesDetailsUnlessAsked(t *testing.T) {
	t.Parallel()

	err := NewAppError(ErrAIServerOverloaded, errors.New("gemini api error (503): overloaded"))

	prod := ErrorResponse(err, false)
	if prod.Success || prod.ErrorCode != ErrAIServerOverloaded || prod.Details != "" {
		t.Fatalf("unexpected production body: %+v", prod)
	}
	if prod.Error != Message(ErrAIServerOverloaded) {
		t.Fatalf("message = %q", prod.Error)
	}

	dev := ErrorResponse(err, true)
	if !strings.Contains(dev.Details, "503") {
		t.Fatalf("details = %q, want upstream cause", dev.Details)
	}
}

func TestAsAppErrorClassifiesUnknownErrors(t *testing.T) {
	t.Parallel()

	ae := AsAppError(errors.New("boom"))
	if ae.Code != ErrServer || ae.Status() != http.StatusInternalServerError {
		t.Fatalf("unexpected classification: %+v", ae)
	}
	if AsAppError(nil) != nil {
		t.Fatalf("nil error must stay nil")
	}

	wrapped := fmt.Errorf("lookup: %w", NewAppError(ErrBarcodeProductNotFound, nil))
	if !HasCode(wrapped, ErrBarcodeProductNotFound) {
		t.Fatalf("wrapped code not found")
	}
	if AsAppError(wrapped).Status() != http.StatusNotFound {
		t.Fatalf("status = %d", AsAppError(wrapped).Status())
	}
}

func TestEveryCodeHasMessageAndStatus(t *testing.T) {
	t.Parallel()

	for code, info := range errorTable {
		if info.message == "" || info.status < 400 {
			t.Fatalf("%s: incomplete entry %+v", code, info)
		}
	}
	if Message("E-NOPE-999") != Message(ErrServer) {
		t.Fatalf("unknown code should fall back to the server message")
	}
}
