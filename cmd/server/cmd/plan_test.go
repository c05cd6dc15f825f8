package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
)

type stubPlanner struct {
	mu       sync.Mutex
	searched []itinerary.Range

	accommodations func(ctx context.Context, location string, stay itinerary.Range) ([]offers.Accommodation, error)
	flights        func(ctx context.Context, origin, destination string, stay itinerary.Range) ([]offers.Flight, error)
}

func (s *stubPlanner) Event(_ context.Context, id string) (*events.Event, error) {
	if id != "evt1" {
		return nil, fmt.Errorf("event %s: %w", id, itinerary.ErrNotFound)
	}
	return &events.Event{
		ID:        "evt1",
		Name:      "Tech Summit",
		City:      "Berlin",
		StartDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubPlanner) Accommodations(ctx context.Context, location string, stay itinerary.Range) ([]offers.Accommodation, error) {
	s.mu.Lock()
	s.searched = append(s.searched, stay)
	s.mu.Unlock()
	if s.accommodations != nil {
		return s.accommodations(ctx, location, stay)
	}
	return []offers.Accommodation{{ID: "hotel1", Name: "Grand Hotel"}}, nil
}

func (s *stubPlanner) Accommodation(_ context.Context, id, _ string, _ itinerary.Range) (*offers.Accommodation, error) {
	return &offers.Accommodation{ID: id, Name: "Grand Hotel"}, nil
}

func (s *stubPlanner) Flights(ctx context.Context, origin, destination string, stay itinerary.Range) ([]offers.Flight, error) {
	if s.flights != nil {
		return s.flights(ctx, origin, destination, stay)
	}
	return []offers.Flight{{ID: "fl1", Airline: "Lufthansa", DepartureTime: "06:00", ArrivalTime: "08:00"}}, nil
}

func runSession(t *testing.T, api plannerAPI, script ...string) string {
	t.Helper()
	out := new(bytes.Buffer)
	p := newPlanner(api, out, zerolog.Nop())
	if err := p.Run(context.Background(), strings.NewReader(strings.Join(script, "\n")+"\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestPlanSkipBothSteps(t *testing.T) {
	output := runSession(t, &stubPlanner{},
		"event evt1",
		"dates 2025-06-11 2025-06-14",
		"skip",
		"skip",
	)

	for _, want := range []string{
		"Tech Summit in Berlin, 2025-06-10",
		"Suggested stay: 2025-06-07 to 2025-06-14",
		itinerary.HintContainment + ". Keeping 2025-06-07 to 2025-06-14",
		"Accommodation: Skipped",
		"Accommodation:  Skipped",
		"Transportation: Skipped",
		"Dates:          2025-06-07 to 2025-06-14",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, itinerary.StatusNotSelected) {
		t.Errorf("skipped steps must not read as not selected:\n%s", output)
	}
}

func TestPlanChooseAccommodationAndFlight(t *testing.T) {
	output := runSession(t, &stubPlanner{},
		"event evt1",
		"choose hotel1",
		"origin ber",
		"flight fl1",
		"address",
	)

	for _, want := range []string{
		"Accommodation: Selected (ID: hotel1)",
		"Flights from BER to Berlin:",
		"Accommodation:  Selected (Grand Hotel)",
		"transportationId=fl1",
		"transportationProvider=Lufthansa",
		"/results?",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestPlanErrors(t *testing.T) {
	output := runSession(t, &stubPlanner{},
		"dates 2025-06-07 2025-06-14",
		"event missing",
		"summary",
		"frobnicate",
		"back summary",
	)

	for _, want := range []string{
		"pick an event first",
		"Not found.",
		"Pick an event first.",
		`unknown command "frobnicate"`,
		"cannot jump ahead to summary",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestPlanTransientFailureIsExplained(t *testing.T) {
	api := &stubPlanner{
		flights: func(context.Context, string, string, itinerary.Range) ([]offers.Flight, error) {
			return nil, fmt.Errorf("flights: %w", itinerary.ErrTransient)
		},
	}
	output := runSession(t, api, "event evt1", "skip", "origin BER")

	if !strings.Contains(output, "it may still be starting") {
		t.Errorf("expected transient hint, got:\n%s", output)
	}
}

func TestPlanBackKeepsOnlyEarlierFields(t *testing.T) {
	out := new(bytes.Buffer)
	p := newPlanner(&stubPlanner{}, out, zerolog.Nop())
	ctx := context.Background()

	if err := p.pickEvent(ctx, "evt1"); err != nil {
		t.Fatalf("pick event: %v", err)
	}
	if err := p.skip(ctx); err != nil {
		t.Fatalf("skip accommodation: %v", err)
	}
	if err := p.skip(ctx); err != nil {
		t.Fatalf("skip transportation: %v", err)
	}
	if err := p.back(ctx, "accommodation"); err != nil {
		t.Fatalf("back: %v", err)
	}
	p.wg.Wait()

	if p.step != itinerary.StepAccommodation {
		t.Errorf("expected accommodation step, got %v", p.step)
	}
	if !p.sel.Accommodation.IsAbsent() || !p.sel.Transport.Choice.IsAbsent() {
		t.Errorf("expected later choices cleared, got %+v", p.sel)
	}
	if p.sel.EventID != "evt1" || p.sel.Location != "Berlin" {
		t.Errorf("expected event kept, got %+v", p.sel)
	}
}

func TestPlanDropsSupersededSearch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	defaultRange := "2025-06-07 to 2025-06-14"
	api := &stubPlanner{
		accommodations: func(_ context.Context, _ string, stay itinerary.Range) ([]offers.Accommodation, error) {
			if stay.String() == defaultRange {
				close(started)
				<-release
				return []offers.Accommodation{{ID: "stale", Name: "Stale Inn"}}, nil
			}
			return []offers.Accommodation{{ID: "fresh", Name: "Fresh Hotel"}}, nil
		},
	}
	out := new(bytes.Buffer)
	p := newPlanner(api, out, zerolog.Nop())
	ctx := context.Background()

	if err := p.pickEvent(ctx, "evt1"); err != nil {
		t.Fatalf("pick event: %v", err)
	}
	<-started
	if err := p.editDates(ctx, "2025-06-09", "2025-06-13"); err != nil {
		t.Fatalf("edit dates: %v", err)
	}
	// wait for the newer search to land before the older one returns
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(syncedString(p), "Fresh Hotel") {
		if time.Now().After(deadline) {
			t.Fatal("newer search never printed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(release)
	p.wg.Wait()

	output := out.String()
	if strings.Contains(output, "Stale Inn") {
		t.Errorf("superseded results were printed:\n%s", output)
	}
	if got := p.searches.Superseded(); got != 1 {
		t.Errorf("expected 1 superseded search, got %d", got)
	}
}

// The date edit follows the event pick immediately; whichever goroutine runs
// first, only the edited range may print.
func TestPlanBackToBackSearchesKeepIssueOrder(t *testing.T) {
	edited := "2025-06-09 to 2025-06-13"
	for i := 0; i < 20; i++ {
		api := &stubPlanner{
			accommodations: func(ctx context.Context, _ string, stay itinerary.Range) ([]offers.Accommodation, error) {
				if stay.String() != edited {
					<-ctx.Done()
					return []offers.Accommodation{{ID: "stale", Name: "Stale Inn"}}, nil
				}
				return []offers.Accommodation{{ID: "fresh", Name: "Fresh Hotel"}}, nil
			},
		}
		out := new(bytes.Buffer)
		p := newPlanner(api, out, zerolog.Nop())
		ctx := context.Background()

		if err := p.pickEvent(ctx, "evt1"); err != nil {
			t.Fatalf("pick event: %v", err)
		}
		if err := p.editDates(ctx, "2025-06-09", "2025-06-13"); err != nil {
			t.Fatalf("edit dates: %v", err)
		}
		p.wg.Wait()

		output := out.String()
		if strings.Contains(output, "Stale Inn") || !strings.Contains(output, "Fresh Hotel") {
			t.Fatalf("run %d: expected only the edited range's offers, got:\n%s", i, output)
		}
		if key, _ := p.searches.Key(); key.String() != edited {
			t.Fatalf("run %d: newest search is %s, want %s", i, key, edited)
		}
		if got := p.searches.Superseded(); got != 1 {
			t.Fatalf("run %d: expected 1 superseded search, got %d", i, got)
		}
	}
}

func syncedString(p *planner) string {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	return p.out.(*bytes.Buffer).String()
}

func TestStepByName(t *testing.T) {
	tests := []struct {
		name string
		want itinerary.Step
		ok   bool
	}{
		{"event", itinerary.StepEvent, true},
		{"Accommodation", itinerary.StepAccommodation, true},
		{"results", itinerary.StepSummary, true},
		{"nowhere", 0, false},
	}
	for _, tt := range tests {
		got, ok := stepByName(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("stepByName(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlanLogsToStderr(t *testing.T) {
	cmd := newPlanCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	logger := planLogger(cmd, config.LoggingConfig{Level: "warn", Format: "json"})
	logger.Warn().Str("op", "get_event").Msg("retrying request")

	if !strings.Contains(stderr.String(), "retrying request") {
		t.Errorf("expected log on stderr, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", stdout.String())
	}
}
