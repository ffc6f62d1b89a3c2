package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/harvestkit/lcscharvest/internal/model"
)

// TestCleanDescription tests description normalization.
func TestCleanDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "collapses whitespace",
			in:   "Dual   N-Channel\t\tMOSFET,\n30V",
			want: "Dual N-Channel MOSFET, 30V",
		},
		{
			name: "strips trailing dollar price",
			in:   "Schottky Diode 40V 1A $0.0123 per unit",
			want: "Schottky Diode 40V 1A",
		},
		{
			name: "strips trailing US dollar price",
			in:   "Schottky Diode 40V 1A US$1,234.56 bulk",
			want: "Schottky Diode 40V 1A",
		},
		{
			name: "strips trailing piece count",
			in:   "Chip Resistor 10k 120 pcs in stock",
			want: "Chip Resistor 10k",
		},
		{
			name: "trims surrounding whitespace",
			in:   "  SMD Inductor 4.7uH  ",
			want: "SMD Inductor 4.7uH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CleanDescription(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestCleanDescriptionTruncation tests the 200-character limit.
func TestCleanDescriptionTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 60) // 300 chars
	got := CleanDescription(long)

	if len(got) > model.MaxDescriptionLength+len("...") {
		t.Errorf("cleaned description too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis marker, got %q", got[len(got)-10:])
	}
	// Truncation happens at a whitespace boundary, so no partial words.
	trimmed := strings.TrimSuffix(got, "...")
	if strings.HasSuffix(trimmed, " ") {
		t.Errorf("expected no trailing space before ellipsis in %q", got)
	}
	for _, w := range strings.Fields(trimmed) {
		if w != "word" {
			t.Errorf("truncation split a word: %q", w)
		}
	}
}

// TestExtractDetailDescription tests the detail page description pattern.
func TestExtractDetailDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "terminated by datasheet label",
			text: "Description Dual N-Channel MOSFET, 30V Datasheet PDF here",
			want: "Dual N-Channel MOSFET, 30V",
		},
		{
			name: "terminated by specifications marker",
			text: "Description Chip Resistor 10k 1% ## Products Specifications Width 1.6mm",
			want: "Chip Resistor 10k 1%",
		},
		{
			name: "terminated by end of text",
			text: "Description SMD Ferrite Bead 600R",
			want: "SMD Ferrite Bead 600R",
		},
		{
			name: "no label",
			text: "Some unrelated page content",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractDetailDescription(tt.text); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestDescriptionResolver tests the detail page fallback over HTTP.
func TestDescriptionResolver(t *testing.T) {
	t.Parallel()

	t.Run("fills empty description from detail page", func(t *testing.T) {
		t.Parallel()

		var requested string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = r.URL.Path
			fmt.Fprint(w, `<html><body>
				<h1>C40912</h1>
				<div>Description</div>
				<div>Dual N-Channel MOSFET, 30V</div>
				<div>Datasheet</div>
			</body></html>`)
		}))
		defer server.Close()

		resolver := NewDescriptionResolver(
			NewClient(5*time.Second, "test-agent"),
			server.URL,
			WithResolverDelay(0),
		)

		rec := model.Record{LCSCCode: "C40912"}
		resolver.Resolve(context.Background(), &rec)

		if requested != "/product-detail/C40912.html" {
			t.Errorf("expected detail path for C40912, got %q", requested)
		}
		if rec.Description != "Dual N-Channel MOSFET, 30V" {
			t.Errorf("expected resolved description, got %q", rec.Description)
		}
	})

	t.Run("keeps existing description without fetching", func(t *testing.T) {
		t.Parallel()

		fetched := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fetched = true
		}))
		defer server.Close()

		resolver := NewDescriptionResolver(
			NewClient(5*time.Second, "test-agent"),
			server.URL,
			WithResolverDelay(0),
		)

		rec := model.Record{LCSCCode: "C40912", Description: "already set"}
		resolver.Resolve(context.Background(), &rec)

		if fetched {
			t.Error("expected no detail fetch for a record with a description")
		}
		if rec.Description != "already set" {
			t.Errorf("description changed: %q", rec.Description)
		}
	})

	t.Run("fetch failure leaves description empty", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		resolver := NewDescriptionResolver(
			NewClient(5*time.Second, "test-agent"),
			server.URL,
			WithResolverDelay(0),
		)

		rec := model.Record{LCSCCode: "C40912"}
		resolver.Resolve(context.Background(), &rec)

		if rec.Description != "" {
			t.Errorf("expected empty description after soft failure, got %q", rec.Description)
		}
	})
}
