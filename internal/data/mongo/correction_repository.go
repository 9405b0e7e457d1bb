package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
)

const (
	// CorrectionCollectionName is the name of the correction audit collection in MongoDB
	CorrectionCollectionName = "balance_corrections"
)

// correctionDocument is the stored form of a correction. Ids are kept as
// strings so the collection stays readable from the mongo shell.
type correctionDocument struct {
	ID               string               `bson:"_id"`
	ClinicID         string               `bson:"clinic_id"`
	AccountID        string               `bson:"account_id"`
	PreviousBalance  primitive.Decimal128 `bson:"previous_balance"`
	CorrectedBalance primitive.Decimal128 `bson:"corrected_balance"`
	Difference       primitive.Decimal128 `bson:"difference"`
	RealizedRevenue  primitive.Decimal128 `bson:"realized_revenue"`
	RealizedExpense  primitive.Decimal128 `bson:"realized_expense"`
	CorrelationID    string               `bson:"correlation_id,omitempty"`
	ComputedAt       time.Time            `bson:"computed_at"`
}

func toDocument(c *correction.Correction) (*correctionDocument, error) {
	doc := &correctionDocument{
		ID:            c.ID.String(),
		ClinicID:      c.ClinicID.String(),
		AccountID:     c.AccountID.String(),
		CorrelationID: c.CorrelationID,
		ComputedAt:    c.ComputedAt.UTC(),
	}

	fields := []struct {
		dst *primitive.Decimal128
		src decimal.Decimal
	}{
		{&doc.PreviousBalance, c.PreviousBalance},
		{&doc.CorrectedBalance, c.CorrectedBalance},
		{&doc.Difference, c.Difference},
		{&doc.RealizedRevenue, c.RealizedRevenue},
		{&doc.RealizedExpense, c.RealizedExpense},
	}
	for _, f := range fields {
		d128, err := primitive.ParseDecimal128(f.src.String())
		if err != nil {
			return nil, fmt.Errorf("failed to encode amount %s: %w", f.src.String(), err)
		}
		*f.dst = d128
	}
	return doc, nil
}

func (d *correctionDocument) toDomain() (*correction.Correction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid correction id %q: %w", d.ID, err)
	}
	clinicID, err := uuid.Parse(d.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("invalid clinic id %q: %w", d.ClinicID, err)
	}
	accountID, err := uuid.Parse(d.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", d.AccountID, err)
	}

	c := &correction.Correction{
		ID:            id,
		ClinicID:      clinicID,
		AccountID:     accountID,
		CorrelationID: d.CorrelationID,
		ComputedAt:    d.ComputedAt,
	}

	fields := []struct {
		dst *decimal.Decimal
		src primitive.Decimal128
	}{
		{&c.PreviousBalance, d.PreviousBalance},
		{&c.CorrectedBalance, d.CorrectedBalance},
		{&c.Difference, d.Difference},
		{&c.RealizedRevenue, d.RealizedRevenue},
		{&c.RealizedExpense, d.RealizedExpense},
	}
	for _, f := range fields {
		value, err := decimal.NewFromString(f.src.String())
		if err != nil {
			return nil, fmt.Errorf("invalid amount %s on correction %s: %w", f.src.String(), d.ID, err)
		}
		*f.dst = value
	}
	return c, nil
}

// CorrectionRepository implements the correction.Repository interface for MongoDB
type CorrectionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCorrectionRepository creates a new MongoDB correction repository
func NewCorrectionRepository(logger *slog.Logger, db *mongo.Database) correction.Repository {
	return &CorrectionRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a correction. The correction id is the document key, so
// replaying the same outbox message yields ErrDuplicateCorrection.
func (r *CorrectionRepository) Create(ctx context.Context, c *correction.Correction) error {
	doc, err := toDocument(c)
	if err != nil {
		return err
	}

	collection := r.db.Collection(CorrectionCollectionName)
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return correction.ErrDuplicateCorrection{ID: c.ID}
		}
		r.logger.Error("Failed to create balance correction",
			"correction_id", c.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create balance correction: %w", err)
	}

	return nil
}

// ListByAccount retrieves paginated corrections for an account, newest first
func (r *CorrectionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*correction.Correction, error) {
	collection := r.db.Collection(CorrectionCollectionName)

	filter := bson.M{"account_id": accountID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "computed_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list balance corrections",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list balance corrections: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []correctionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode balance corrections",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode balance corrections: %w", err)
	}

	corrections := make([]*correction.Correction, 0, len(docs))
	for i := range docs {
		c, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		corrections = append(corrections, c)
	}
	return corrections, nil
}

// CountByAccount counts the corrections recorded for an account
func (r *CorrectionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(CorrectionCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"account_id": accountID.String()})
	if err != nil {
		r.logger.Error("Failed to count balance corrections",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count balance corrections: %w", err)
	}

	return count, nil
}
