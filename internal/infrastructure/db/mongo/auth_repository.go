package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carsales/catalog-api/internal/core/domain"
)

const accountsColl = "accounts"

type AuthRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewAuthRepository(db *mongo.Database) *AuthRepository {
	return &AuthRepository{db: db, coll: db.Collection(accountsColl)}
}

type accountDoc struct {
	ID              uint64    `bson:"_id"`
	Email           string    `bson:"email"`
	NormalizedEmail string    `bson:"normalized_email"`
	PasswordHash    string    `bson:"password_hash"`
	Role            string    `bson:"role"`
	CreatedAt       time.Time `bson:"created_at"`
}

func (d *accountDoc) toDomain() (*domain.Account, error) {
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", d.ID, err)
	}
	return &domain.Account{
		ID:              d.ID,
		Email:           d.Email,
		NormalizedEmail: d.NormalizedEmail,
		PasswordHash:    d.PasswordHash,
		Role:            role,
		CreatedAt:       d.CreatedAt.UTC(),
	}, nil
}

func (r *AuthRepository) FindByNormalizedEmail(ctx context.Context, normalized string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"normalized_email": normalized}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapStore("find account", err)
	}
	a, err := d.toDomain()
	if err != nil {
		return nil, domain.WrapStore("decode account", err)
	}
	return a, nil
}

func (r *AuthRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, accountsColl)
	if err != nil {
		return domain.WrapStore("insert account", err)
	}

	doc := accountDoc{
		ID:              id,
		Email:           account.Email,
		NormalizedEmail: account.NormalizedEmail,
		PasswordHash:    account.PasswordHash,
		Role:            account.Role.String(),
		CreatedAt:       account.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return domain.WrapStore("insert account", err)
	}
	account.ID = id
	return nil
}

func (r *AuthRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"role": role.String()})
	if err != nil {
		return 0, domain.WrapStore("count accounts", err)
	}
	return n, nil
}

func (r *AuthRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.WrapStore("list accounts", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStore("list accounts", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toDomain()
		if err != nil {
			return nil, domain.WrapStore("decode account", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AuthRepository) UpdateEmail(ctx context.Context, id uint64, email, normalized string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"email":            email,
		"normalized_email": normalized,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return domain.WrapStore("update account email", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
