package wizard

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jung-kurt/gofpdf"
)

const exportFilename = "eventrip-trip"

func (s *Server) resultsPDF(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTrip(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := tripPDF(t, time.Now().UTC())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, exportFilename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) resultsICS(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTrip(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, exportFilename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(tripCalendar(t, time.Now().UTC())))
}

// tripPDF lays the summary lines out as a one-page document.
func tripPDF(t *trip, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Trip to "+t.Summary.Event, true)
	pdf.AddPage()

	pdf.SetFillColor(29, 95, 168)
	pdf.Rect(0, 0, 210, 24, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 7)
	pdf.CellFormat(170, 10, "Eventrip", "", 1, "L", false, 0, "")

	pdf.SetY(34)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(170, 7, tr(t.Summary.Event), "", "L", false)
	pdf.Ln(3)

	for _, line := range t.Summary.Lines() {
		if line.Value == "" {
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(45, 7, tr(line.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(20, 20, 20)
		pdf.MultiCell(125, 7, tr(line.Value), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(45, 7, "Event dates", "", 0, "L", false, 0, "")
	pdf.CellFormat(125, 7, formatSpan(t.Span), "", 1, "L", false, 0, "")

	pdf.SetY(-22)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, "Generated "+generated.Format("02 Jan 2006 15:04 UTC")+". Not a booking confirmation.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render trip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// tripCalendar publishes the event and, when chosen, the stay as all-day
// entries. All-day ends are exclusive so both run through their last day.
func tripCalendar(t *trip, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Eventrip//Trip Planner//EN")

	ev := cal.AddEvent(fmt.Sprintf("event-%s@eventrip", t.Selection.EventID))
	ev.SetDtStampTime(stamp)
	ev.SetSummary(t.Summary.Event)
	ev.SetLocation(eventLocation(t))
	ev.SetAllDayStartAt(t.Span.Start.Time())
	ev.SetAllDayEndAt(t.Span.End.AddDays(1).Time())
	if t.Event != nil && t.Event.WebsiteURL != "" {
		ev.SetURL(t.Event.WebsiteURL)
	}

	stay := t.Selection.Stay
	uid := fmt.Sprintf("stay-%s-%s@eventrip", t.Selection.EventID, stay.CheckIn)
	st := cal.AddEvent(uid)
	st.SetDtStampTime(stamp)
	st.SetSummary("Stay in " + t.Selection.Location)
	st.SetLocation(t.Selection.Location)
	st.SetAllDayStartAt(stay.CheckIn.Time())
	st.SetAllDayEndAt(stay.CheckOut.AddDays(1).Time())
	st.SetDescription(fmt.Sprintf("Accommodation: %s\nTransportation: %s", t.Summary.Accommodation, t.Summary.Transportation))

	return cal.Serialize()
}

func eventLocation(t *trip) string {
	if t.Event == nil {
		return t.Selection.Location
	}
	parts := []string{}
	if street := strings.TrimSpace(t.Event.Street + " " + t.Event.StreetNumber); street != "" {
		parts = append(parts, street)
	}
	if t.Event.City != "" {
		parts = append(parts, strings.TrimSpace(t.Event.ZipCode+" "+t.Event.City))
	}
	if t.Event.Country != "" {
		parts = append(parts, t.Event.Country)
	}
	if len(parts) == 0 {
		return t.Selection.Location
	}
	return strings.Join(parts, ", ")
}
