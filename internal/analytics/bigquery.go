package analytics

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/mealforge/recipe-service/internal/events"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// eventRow - the archive table schema. One row per recipe change event.
type eventRow struct {
	EventID    string `bigquery:"event_id"`
	Type       string `bigquery:"type"`
	UserID     int64  `bigquery:"user_id"`
	RecipeID   int64  `bigquery:"recipe_id"`
	Title      string `bigquery:"title"`
	OccurredAt string `bigquery:"occurred_at"`
}

// BigQuerySink archives recipe change events into a BigQuery table through
// the streaming inserter. It implements events.Sink, so the same fan-out
// serves both the broker and the archive.
type BigQuerySink struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

// NewBigQuerySink - BigQuerySink constructor.
func NewBigQuerySink(ctx context.Context, projectID, datasetID, tableID string, opts ...option.ClientOption) (*BigQuerySink, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating BigQuery client")
	}

	return &BigQuerySink{
		client:   client,
		inserter: client.Dataset(datasetID).Table(tableID).Inserter(),
	}, nil
}

// Deliver - stream one event row into the archive table.
func (s *BigQuerySink) Deliver(ctx context.Context, event events.Event) error {
	row := eventRow{
		EventID:    event.EventID,
		Type:       event.Type,
		UserID:     event.UserID,
		RecipeID:   event.RecipeID,
		Title:      event.Title,
		OccurredAt: event.OccurredAt.Format("2006-01-02T15:04:05.000000Z07:00"),
	}

	err := s.inserter.Put(ctx, row)
	if err != nil {
		return errors.Wrap(err, "error streaming event row to BigQuery")
	}

	return nil
}

// Close - release the BigQuery client.
func (s *BigQuerySink) Close(context.Context) error {
	return s.client.Close()
}
