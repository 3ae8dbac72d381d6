package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/pkg/kafka"
	"github.com/eshoply/catalog-service/pkg/logger"
)

// Kafka topics the catalog service publishes to.
const (
	TopicProductCreated  = "catalog.product.created"
	TopicProductUpdated  = "catalog.product.updated"
	TopicReviewSubmitted = "catalog.review.submitted"
)

const source = "catalog-service"

// ProductPayload is the data carried by product lifecycle events.
type ProductPayload struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand"`
	Stock     int       `json:"stock"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewPayload is the data carried by review submission events.
type ReviewPayload struct {
	ReviewID   string    `json:"review_id"`
	ProductID  string    `json:"product_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Created    bool      `json:"created"`
	NewRatings float64   `json:"new_ratings"`
	NumReviews int       `json:"num_reviews"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits catalog domain events. Publishing is best-effort: a broker
// failure is logged but never fails the originating request, so every method
// returns nothing.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewPublisher creates a domain event publisher on top of a Kafka producer.
func NewPublisher(producer *kafka.Producer, log *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: log}
}

// ProductCreated publishes a product creation event.
func (p *Publisher) ProductCreated(ctx context.Context, product *domain.Product) {
	p.publishProduct(ctx, TopicProductCreated, "product.created", product)
}

// ProductUpdated publishes a product update event.
func (p *Publisher) ProductUpdated(ctx context.Context, product *domain.Product) {
	p.publishProduct(ctx, TopicProductUpdated, "product.updated", product)
}

func (p *Publisher) publishProduct(ctx context.Context, topic, eventType string, product *domain.Product) {
	payload := ProductPayload{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Category:  product.Category,
		Brand:     product.Brand,
		Stock:     product.Stock,
		UserID:    product.UserID,
		Timestamp: time.Now().UTC(),
	}

	p.publish(ctx, topic, eventType, product.ID, "product", payload)
}

// ReviewSubmitted publishes a review submission event, carrying the product's
// recomputed aggregate so downstream consumers need no extra lookup.
func (p *Publisher) ReviewSubmitted(ctx context.Context, review *domain.Review, created bool, product *domain.Product) {
	payload := ReviewPayload{
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		Created:    created,
		NewRatings: product.Ratings,
		NumReviews: product.NumReviews,
		Timestamp:  time.Now().UTC(),
	}

	p.publish(ctx, TopicReviewSubmitted, "review.submitted", review.ProductID, "review", payload)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	if p.producer == nil {
		return
	}

	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish domain event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
	}
}
