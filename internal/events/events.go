package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealforge/recipe-service/internal/domain"
	"github.com/mealforge/recipe-service/pkg/logx"
)

// Event types emitted on recipe changes.
const (
	TypeRecipeCreated = "recipe.created"
	TypeRecipeUpdated = "recipe.updated"
	TypeRecipeDeleted = "recipe.deleted"
)

// Event - a recipe change notification for downstream consumers.
type Event struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	RecipeID   int64     `json:"recipe_id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink - a destination for events. Sinks own their transport and are closed
// by the publisher on shutdown.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
	Close(ctx context.Context) error
}

// Publisher fans events out to every configured sink. Delivery is best
// effort: a failing sink is logged and never fails the originating request.
type Publisher struct {
	sinks []Sink
}

// NewPublisher - Publisher constructor. A publisher without sinks is a valid
// no-op.
func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

// RecipeCreated - emit a recipe.created event.
func (p *Publisher) RecipeCreated(ctx context.Context, recipe *domain.Recipe) {
	p.deliver(ctx, Event{
		EventID:    newEventID(),
		Type:       TypeRecipeCreated,
		UserID:     recipe.UserID,
		RecipeID:   recipe.ID,
		Title:      recipe.Title,
		OccurredAt: time.Now().UTC(),
	})
}

// RecipeUpdated - emit a recipe.updated event.
func (p *Publisher) RecipeUpdated(ctx context.Context, recipe *domain.Recipe) {
	p.deliver(ctx, Event{
		EventID:    newEventID(),
		Type:       TypeRecipeUpdated,
		UserID:     recipe.UserID,
		RecipeID:   recipe.ID,
		Title:      recipe.Title,
		OccurredAt: time.Now().UTC(),
	})
}

// RecipeDeleted - emit a recipe.deleted event.
func (p *Publisher) RecipeDeleted(ctx context.Context, userID, recipeID int64) {
	p.deliver(ctx, Event{
		EventID:    newEventID(),
		Type:       TypeRecipeDeleted,
		UserID:     userID,
		RecipeID:   recipeID,
		OccurredAt: time.Now().UTC(),
	})
}

// Close - close every sink. Called once on shutdown.
func (p *Publisher) Close(ctx context.Context) {
	for _, sink := range p.sinks {
		if err := sink.Close(ctx); err != nil {
			logx.GetLogger().LogWarning(ctx, "Error closing event sink", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event Event) {
	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			logx.GetLogger().LogWarning(ctx, "Error delivering event "+event.EventID, err)
		}
	}
}

func newEventID() string {
	return uuid.New().String()
}
