package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

const listingsColl = "listings"

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

type ListingRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{db: db, col: db.Collection(listingsColl)}
}

type listingDoc struct {
	ID          uint64               `bson:"_id"`
	Make        string               `bson:"make"`
	Model       string               `bson:"model"`
	Year        int                  `bson:"year"`
	Price       primitive.Decimal128 `bson:"price"`
	Mileage     int                  `bson:"mileage"`
	Description string               `bson:"description,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
	Active      bool                 `bson:"active"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func listingToDoc(l *domain.Listing) (*listingDoc, error) {
	price, err := toDecimal128(l.Price)
	if err != nil {
		return nil, fmt.Errorf("price %s: %w", l.Price, err)
	}
	return &listingDoc{
		ID:          l.ID,
		Make:        l.Make,
		Model:       l.Model,
		Year:        l.Year,
		Price:       price,
		Mileage:     l.Mileage,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Active:      l.Active,
	}, nil
}

func (d *listingDoc) toDomain() (*domain.Listing, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("listing %d price: %w", d.ID, err)
	}
	return &domain.Listing{
		ID:          d.ID,
		Make:        d.Make,
		Model:       d.Model,
		Year:        d.Year,
		Price:       price,
		Mileage:     d.Mileage,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
		Active:      d.Active,
	}, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, listingsColl)
	if err != nil {
		return domain.WrapStore("insert listing", err)
	}
	l.ID = id

	doc, err := listingToDoc(l)
	if err != nil {
		l.ID = 0
		return domain.WrapStore("encode listing", err)
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		l.ID = 0
		return domain.WrapStore("insert listing", err)
	}
	return nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := listingToDoc(l)
	if err != nil {
		return domain.WrapStore("encode listing", err)
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": l.ID}, doc)
	if err != nil {
		return domain.WrapStore("update listing", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uint64, activeOnly bool) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if activeOnly {
		filter["active"] = true
	}

	var d listingDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapStore("find listing", err)
	}
	l, err := d.toDomain()
	if err != nil {
		return nil, domain.WrapStore("decode listing", err)
	}
	return l, nil
}

func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]*domain.Listing, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := buildFilter(f)
	if err != nil {
		return nil, 0, domain.WrapStore("build listing filter", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, domain.WrapStore("count listings", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, domain.WrapStore("count listings", err)
	}
	return n, nil
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Listing, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.WrapStore("list listings", err)
	}
	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStore("list listings", err)
	}

	out := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		l, err := docs[i].toDomain()
		if err != nil {
			return nil, domain.WrapStore("decode listing", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// buildFilter translates f into a conjunctive query. Search text is matched
// literally.
func buildFilter(f ports.ListingFilter) (bson.M, error) {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search)}
		filter["$or"] = bson.A{
			bson.M{"make": rx},
			bson.M{"model": rx},
			bson.M{"description": rx},
		}
	}
	if f.Make != "" {
		filter["make"] = f.Make
	}

	year := bson.M{}
	if f.MinYear != nil {
		year["$gte"] = *f.MinYear
	}
	if f.MaxYear != nil {
		year["$lte"] = *f.MaxYear
	}
	if len(year) > 0 {
		filter["year"] = year
	}

	price := bson.M{}
	if f.MinPrice != nil {
		d, err := toDecimal128(*f.MinPrice)
		if err != nil {
			return nil, err
		}
		price["$gte"] = d
	}
	if f.MaxPrice != nil {
		d, err := toDecimal128(*f.MaxPrice)
		if err != nil {
			return nil, err
		}
		price["$lte"] = d
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter, nil
}
