package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:              http.StatusNotFound,
		KindInvalidInput:          http.StatusUnprocessableEntity,
		KindUnauthenticated:       http.StatusUnauthorized,
		KindRiskReauth:            http.StatusUnauthorized,
		KindRateLimited:           http.StatusTooManyRequests,
		KindDependencyUnavailable: http.StatusServiceUnavailable,
		KindUnknown:               http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", kind, got, want)
		}
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NotFound("issue not found"))
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", KindOf(wrapped))
	}
	if KindOf(fmt.Errorf("plain")) != KindUnknown {
		t.Error("KindOf(plain error) should be KindUnknown")
	}
}

func TestErrorDetailNotLeakedIntoCauseFreeMessage(t *testing.T) {
	err := NotFound("issue not found")
	if err.Error() != "not_found: issue not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
