package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTP(t *testing.T) {
	notFound := New(ErrNotFound, "room not found")
	if notFound.Error() != "room not found" {
		t.Fatalf("message changed: %q", notFound.Error())
	}

	for err, want := range map[error]int{
		fmt.Errorf("repo: %w", notFound): http.StatusNotFound,
		New(ErrInvalidInput, "bad"):      http.StatusBadRequest,
		New(ErrConflict, "exists"):       http.StatusConflict,
		New(ErrTooLarge, "big"):          http.StatusRequestEntityTooLarge,
		ErrUnavailable:                   http.StatusServiceUnavailable,
		errors.New("boom"):               http.StatusInternalServerError,
	} {
		if got := ToHTTP(err); got != want {
			t.Fatalf("%v: got %d want %d", err, got, want)
		}
	}
}
