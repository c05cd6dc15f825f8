package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Togather-Foundation/eventrip/internal/apiclient"
	"github.com/Togather-Foundation/eventrip/internal/config"
	"github.com/Togather-Foundation/eventrip/internal/domain/events"
	"github.com/Togather-Foundation/eventrip/internal/domain/offers"
	"github.com/Togather-Foundation/eventrip/internal/itinerary"
	"github.com/Togather-Foundation/eventrip/internal/metrics"
)

func newPlanCmd() *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip interactively in the terminal",
		Long: `Walk through the trip wizard from the terminal.

Commands:
  event <id>           pick an event
  dates <in> <out>     change the stay (yyyy-MM-dd)
  choose <id>          pick an accommodation offer
  skip                 skip the current optional step
  origin <IATA>        search flights from an airport
  flight <id>          pick a flight
  back <step>          return to event, accommodation, transportation or summary
  summary              print the trip so far
  address              print the wizard address for the current step
  quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(); err != nil {
				return err
			}
			cfg, err := config.LoadWizard()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			applyLogFlags(&cfg)
			if apiURL != "" {
				cfg.Wizard.APIBaseURL = apiURL
			}
			logger := planLogger(cmd, cfg.Logging)
			client := apiclient.New(cfg.Wizard.APIBaseURL,
				apiclient.WithTimeout(cfg.Wizard.FetchTimeout),
				apiclient.WithLogger(logger),
			)
			p := newPlanner(client, cmd.OutOrStdout(), logger)
			return p.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "Eventrip API base URL (default: $WIZARD_API_BASE_URL)")
	return cmd
}

// planLogger sends logs to stderr so retry warnings do not land between prompts.
func planLogger(cmd *cobra.Command, cfg config.LoggingConfig) zerolog.Logger {
	return config.NewLoggerTo(cmd.ErrOrStderr(), cfg)
}

// plannerAPI is the part of the API client the terminal wizard uses.
type plannerAPI interface {
	Event(ctx context.Context, id string) (*events.Event, error)
	Accommodations(ctx context.Context, location string, stay itinerary.Range) ([]offers.Accommodation, error)
	Accommodation(ctx context.Context, id, location string, stay itinerary.Range) (*offers.Accommodation, error)
	Flights(ctx context.Context, origin, destination string, stay itinerary.Range) ([]offers.Flight, error)
}

// planner holds one terminal session. Accommodation searches run in the
// background; only the newest one may print.
type planner struct {
	api    plannerAPI
	logger zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	step    itinerary.Step
	sel     itinerary.Selection
	event   *events.Event
	stay    *itinerary.Stay
	flights []offers.Flight

	searches itinerary.Latest[itinerary.Range, []offers.Accommodation]
	wg       sync.WaitGroup
}

func newPlanner(api plannerAPI, out io.Writer, logger zerolog.Logger) *planner {
	return &planner{api: api, out: out, logger: logger, step: itinerary.StepEvent}
}

func (p *planner) printf(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// Run reads commands until quit or end of input. Background searches are
// cancelled and drained before it returns.
func (p *planner) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		p.wg.Wait()
	}()

	p.printf("Eventrip trip planner. Type 'help' for commands.\n")
	scanner := bufio.NewScanner(in)
	for {
		p.printf("%s> ", strings.ToLower(p.step.Title()))
		if !scanner.Scan() {
			p.printf("\n")
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := p.exec(ctx, fields[0], fields[1:]); err != nil {
			p.printf("%s\n", describe(err))
		}
	}
}

func (p *planner) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		p.printf("event <id> | dates <in> <out> | choose <id> | skip | origin <IATA> | flight <id> | back <step> | summary | address | quit\n")
		return nil
	case "event":
		if len(args) != 1 {
			return errors.New("usage: event <id>")
		}
		return p.pickEvent(ctx, args[0])
	case "dates":
		if len(args) != 2 {
			return errors.New("usage: dates <check-in> <check-out>")
		}
		return p.editDates(ctx, args[0], args[1])
	case "choose":
		if len(args) != 1 {
			return errors.New("usage: choose <id>")
		}
		return p.chooseAccommodation(itinerary.Chosen(args[0]))
	case "skip":
		return p.skip(ctx)
	case "origin":
		if len(args) != 1 {
			return errors.New("usage: origin <IATA>")
		}
		return p.searchFlights(ctx, args[0])
	case "flight":
		if len(args) != 1 {
			return errors.New("usage: flight <id>")
		}
		return p.chooseFlight(ctx, args[0])
	case "back":
		if len(args) != 1 {
			return errors.New("usage: back <step>")
		}
		return p.back(ctx, args[0])
	case "summary":
		return p.printSummary(ctx)
	case "address":
		addr, err := itinerary.Encode(p.step, p.sel)
		if err != nil {
			return err
		}
		p.printf("%s\n", addr)
		return nil
	default:
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}
}

func (p *planner) pickEvent(ctx context.Context, id string) error {
	ev, err := p.api.Event(ctx, id)
	if err != nil {
		return err
	}
	span, err := ev.Span()
	if err != nil {
		return err
	}
	p.event = ev
	p.sel = itinerary.WithEvent(ev.ID, ev.City)
	p.stay = itinerary.NewStay(span, itinerary.Range{})
	p.step = itinerary.StepAccommodation
	p.flights = nil

	p.printf("%s in %s, %s\n", ev.Name, ev.City, span.Start)
	if !span.Start.Equal(span.End) {
		p.printf("Runs until %s\n", span.End)
	}
	p.printf("Suggested stay: %s\n", p.stay.Active())
	p.search(ctx, p.stay.Active())
	return nil
}

func (p *planner) editDates(ctx context.Context, rawIn, rawOut string) error {
	if p.step != itinerary.StepAccommodation || p.stay == nil {
		return errors.New("pick an event first")
	}
	var tentative itinerary.TentativeRange
	if d, err := itinerary.ParseDate(rawIn); err == nil {
		tentative.CheckIn = d
	}
	if d, err := itinerary.ParseDate(rawOut); err == nil {
		tentative.CheckOut = d
	}

	result, changed := p.stay.Edit(tentative)
	metrics.RangeValidations.WithLabelValues(result.Decision.String()).Inc()
	switch result.Decision {
	case itinerary.Rejected:
		p.printf("%s. Keeping %s\n", p.stay.Hint(), p.stay.Active())
	case itinerary.NoDecision:
		p.printf("Both dates are needed as yyyy-MM-dd. Keeping %s\n", p.stay.Active())
	case itinerary.Accepted:
		if !changed {
			p.printf("Stay unchanged: %s\n", p.stay.Active())
			return nil
		}
		p.printf("Stay: %s\n", p.stay.Active())
		p.search(ctx, p.stay.Active())
	}
	return nil
}

// search starts a background accommodation search for rng. The request is
// issued before the goroutine starts; a search that finishes after a later
// one was issued is dropped.
func (p *planner) search(ctx context.Context, rng itinerary.Range) {
	location := p.sel.Location
	callCtx, call := p.searches.Begin(ctx, rng)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		found, err := p.api.Accommodations(callCtx, location, rng)
		found, err = p.searches.Finish(call, found, err)
		switch {
		case errors.Is(err, itinerary.ErrSuperseded):
			metrics.StaleResponses.Inc()
			p.logger.Debug().Str("range", rng.String()).Msg("dropped superseded accommodation search")
			return
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			p.printf("\nAccommodation search for %s failed: %s\n", rng, describe(err))
			return
		}
		p.printOffers(rng, found)
	}()
}

func (p *planner) printOffers(rng itinerary.Range, found []offers.Accommodation) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, "\nAccommodation for %s:\n", rng)
	if len(found) == 0 {
		fmt.Fprintf(p.out, "  no offers\n")
	}
	for _, offer := range found {
		fmt.Fprintf(p.out, "  %-10s %-20s %s/night, %s total\n", offer.ID, offer.Name,
			offer.Price.Format(offer.Currency), offer.TotalPrice.Format(offer.Currency))
	}
}

func (p *planner) chooseAccommodation(choice itinerary.Choice) error {
	if p.step != itinerary.StepAccommodation || p.stay == nil {
		return errors.New("accommodation is chosen after picking an event")
	}
	if choice.IsAbsent() {
		return errors.New("usage: choose <id>")
	}
	next := p.sel
	next.Stay = p.stay.Active()
	next.Accommodation = choice
	addr, err := itinerary.Advance(itinerary.StepAccommodation, next)
	if err != nil {
		return err
	}
	p.sel = next
	p.step = addr.Step
	p.printf("Accommodation: %s\n", itinerary.AccommodationStatus(choice, ""))
	return nil
}

func (p *planner) skip(ctx context.Context) error {
	switch p.step {
	case itinerary.StepAccommodation:
		return p.chooseAccommodation(itinerary.Skipped())
	case itinerary.StepTransportation:
		p.sel.Transport = itinerary.Transport{Choice: itinerary.Skipped()}
		p.step = itinerary.StepSummary
		return p.printSummary(ctx)
	default:
		return fmt.Errorf("nothing to skip on the %s step", strings.ToLower(p.step.Title()))
	}
}

func (p *planner) searchFlights(ctx context.Context, origin string) error {
	if p.step != itinerary.StepTransportation {
		return errors.New("flights are searched on the transportation step")
	}
	origin = strings.ToUpper(strings.TrimSpace(origin))
	found, err := p.api.Flights(ctx, origin, p.sel.Location, p.sel.Stay)
	if err != nil {
		return err
	}
	p.sel.Transport.Origin = origin
	p.flights = found

	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, "Flights from %s to %s:\n", origin, p.sel.Location)
	if len(found) == 0 {
		fmt.Fprintf(p.out, "  no flights\n")
	}
	for _, f := range found {
		fmt.Fprintf(p.out, "  %-10s %-20s %s -> %s %s\n", f.ID, f.Airline, f.DepartureTime, f.ArrivalTime, f.Price.Format(f.Currency))
	}
	return nil
}

func (p *planner) chooseFlight(ctx context.Context, id string) error {
	if p.step != itinerary.StepTransportation {
		return errors.New("flights are chosen on the transportation step")
	}
	for _, f := range p.flights {
		if f.ID != id {
			continue
		}
		p.sel.Transport = itinerary.Transport{
			Choice:   itinerary.Chosen(f.ID),
			Origin:   p.sel.Transport.Origin,
			Provider: f.Airline,
		}
		p.step = itinerary.StepSummary
		return p.printSummary(ctx)
	}
	return fmt.Errorf("%w: flight %q is not in the last search", itinerary.ErrNotFound, id)
}

// back returns to an earlier step, keeping only what that step carries.
func (p *planner) back(ctx context.Context, name string) error {
	target, ok := stepByName(name)
	if !ok {
		return fmt.Errorf("unknown step %q", name)
	}
	addr, ok, err := itinerary.Navigate(p.step, target, p.sel)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cannot jump ahead to %s", strings.ToLower(target.Title()))
	}
	sel, err := itinerary.Decode(addr.Query)
	if err != nil {
		return err
	}
	p.sel = sel
	p.step = target
	p.flights = nil
	switch target {
	case itinerary.StepEvent:
		p.event = nil
		p.stay = nil
	case itinerary.StepAccommodation:
		if span, err := p.event.Span(); err == nil {
			p.stay = itinerary.NewStay(span, itinerary.Range{})
			p.printf("Suggested stay: %s\n", p.stay.Active())
			p.search(ctx, p.stay.Active())
		}
	}
	p.printf("Back at %s\n", addr)
	return nil
}

func (p *planner) printSummary(ctx context.Context) error {
	if p.event == nil {
		return itinerary.ErrInputIncomplete
	}
	names := itinerary.Names{Event: p.event.Name}
	if p.sel.Accommodation.IsChosen() {
		offer, err := p.api.Accommodation(ctx, p.sel.Accommodation.ID(), p.sel.Location, p.sel.Stay)
		if err == nil {
			names.Accommodation = offer.Name
		} else {
			p.logger.Debug().Err(err).Msg("accommodation name unavailable")
		}
	}
	summary := itinerary.Summarize(p.sel, names)

	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, "Trip summary\n")
	for _, line := range summary.Lines() {
		if line.Value == "" {
			continue
		}
		fmt.Fprintf(p.out, "  %-15s %s\n", line.Label+":", line.Value)
	}
	return nil
}

func stepByName(name string) (itinerary.Step, bool) {
	for _, step := range itinerary.Steps {
		if strings.EqualFold(step.Title(), name) {
			return step, true
		}
	}
	if strings.EqualFold(name, "results") {
		return itinerary.StepSummary, true
	}
	return 0, false
}

// describe turns fetch failures into something a person can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, itinerary.ErrTransient):
		return "The service did not respond; it may still be starting. Try again."
	case errors.Is(err, itinerary.ErrNotFound):
		return "Not found."
	case errors.Is(err, itinerary.ErrInputIncomplete):
		return "Pick an event first."
	default:
		return err.Error()
	}
}
