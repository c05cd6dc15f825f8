package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/eventrip/internal/domain/events"
)

// importRepo implements the two methods the importer calls.
type importRepo struct {
	events.Repository
	existing map[string]bool
	created  []events.EventCreateParams
}

func (r *importRepo) ExistsByExternalID(_ context.Context, externalID string) (bool, error) {
	return r.existing[externalID], nil
}

func (r *importRepo) Create(_ context.Context, params events.EventCreateParams) (*events.Event, error) {
	r.created = append(r.created, params)
	return &events.Event{ID: params.ULID, ExternalID: params.ExternalID}, nil
}

const importCSV = "externalId,name,industry,country,city,zipCode,street,streetNumber,location,startDate,endDate\n" +
	"evt-1,Tech Summit,Technology,Germany,Berlin,10115,Alexanderplatz,1,bcc,2025-06-10,2025-06-12\n" +
	"evt-2,Old Expo,Health,Spain,Madrid,28001,Gran Via,2,Ifema,2025-03-01,2025-03-02\n" +
	"evt-3,,Health,Spain,Madrid,28001,Gran Via,2,Ifema,2025-03-01,2025-03-02\n"

func TestRunImport(t *testing.T) {
	repo := &importRepo{existing: map[string]bool{"evt-2": true}}
	out := new(bytes.Buffer)

	err := runImport(context.Background(), out, repo, strings.NewReader(importCSV), false, zerolog.Nop())

	if err == nil || !strings.Contains(err.Error(), "1 row(s) failed") {
		t.Fatalf("expected one failed row, got %v", err)
	}
	if len(repo.created) != 1 || repo.created[0].ExternalID != "evt-1" {
		t.Errorf("expected evt-1 to be created, got %+v", repo.created)
	}
	for _, want := range []string{"Rows:     3", "Imported: 1", "Skipped:  1", "Errors:   1", "line 4"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestRunImportDryRunWritesNothing(t *testing.T) {
	repo := &importRepo{}
	csv := strings.Join(strings.Split(importCSV, "\n")[:3], "\n") + "\n"
	out := new(bytes.Buffer)

	if err := runImport(context.Background(), out, repo, strings.NewReader(csv), true, zerolog.Nop()); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("dry run created %d events", len(repo.created))
	}
	if !strings.Contains(out.String(), "Valid (dry run): 2") {
		t.Errorf("unexpected report:\n%s", out.String())
	}
}
