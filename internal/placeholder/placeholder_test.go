package placeholder_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/valpere/transhub/internal/placeholder"
)

func TestProtect_NoMarkup(t *testing.T) {
	text := "Join us on [Date] at [Location]."
	got, originals := placeholder.Protect(text)
	if got != text {
		t.Errorf("expected unchanged text, got %q", got)
	}
	if len(originals) != 0 {
		t.Errorf("expected no originals, got %v", originals)
	}
}

func TestProtect_URLAndEmail(t *testing.T) {
	text := "Sign up at https://example.org/join?x=1. Questions: ana@example.org"
	got, originals := placeholder.Protect(text)

	want := []string{"https://example.org/join?x=1", "ana@example.org"}
	if !reflect.DeepEqual(originals, want) {
		t.Fatalf("expected %v, got %v", want, originals)
	}
	if got != "Sign up at [PH0]. Questions: [PH1]" {
		t.Errorf("unexpected protected text %q", got)
	}
}

func TestProtect_HTMLTags(t *testing.T) {
	got, originals := placeholder.Protect("<p>Hello <b>world</b></p>")
	if len(originals) != 4 {
		t.Fatalf("expected 4 tags, got %d: %v", len(originals), originals)
	}
	if strings.Contains(got, "<") {
		t.Errorf("tags still present in %q", got)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	text := "Visit www.example.org or write to team@example.org <br>"
	protected, originals := placeholder.Protect(text)

	if got := placeholder.Restore(protected, originals); got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}

func TestRestore_ToleratesSpacing(t *testing.T) {
	got := placeholder.Restore("Visita [ PH0 ] hoy", []string{"https://example.org"})
	if got != "Visita https://example.org hoy" {
		t.Errorf("unexpected restore %q", got)
	}
}

func TestRestore_AppendsDropped(t *testing.T) {
	got := placeholder.Restore("Escríbenos", []string{"ana@example.org"})
	if got != "Escríbenos ana@example.org" {
		t.Errorf("unexpected restore %q", got)
	}
}

func TestRestore_UnknownIndexKept(t *testing.T) {
	got := placeholder.Restore("[PH0] [PH7]", []string{"x@y.org"})
	if got != "x@y.org [PH7]" {
		t.Errorf("unexpected restore %q", got)
	}
}

func TestProtect_LiteralMarkerInInput(t *testing.T) {
	text := "Reply with code [PH0] at https://example.org/rsvp"
	got, originals := placeholder.Protect(text)

	want := []string{"[PH0]", "https://example.org/rsvp"}
	if !reflect.DeepEqual(originals, want) {
		t.Fatalf("expected %v, got %v", want, originals)
	}
	if got != "Reply with code [PH0] at [PH1]" {
		t.Errorf("unexpected protected text %q", got)
	}

	// the model translates around the markers
	restored := placeholder.Restore("Responda con el código [PH0] en [PH1]", originals)
	if restored != "Responda con el código [PH0] en https://example.org/rsvp" {
		t.Errorf("unexpected restore %q", restored)
	}
}
