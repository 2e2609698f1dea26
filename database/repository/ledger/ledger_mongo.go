package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"kymaclub/database"
	"kymaclub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedgerRepo implements Repository using MongoDB. It holds the entry
// collection plus the user and business collections so that cached balance
// updates commit in the same session transaction as the entry inserts.
type MongoLedgerRepo struct {
	entries    *mongo.Collection
	users      *mongo.Collection
	businesses *mongo.Collection
}

// NewMongoLedgerRepo creates a new ledger repository backed by MongoDB.
func NewMongoLedgerRepo() Repository {
	db := database.MongoClient.Database(database.Name())
	repo := &MongoLedgerRepo{
		entries:    db.Collection("ledger_entries"),
		users:      db.Collection("users"),
		businesses: db.Collection("businesses"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create ledger indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates the uniqueness constraint backing idempotency and the
// lookup indexes for account and transaction queries.
func (r *MongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// One posting per (key, rail). A three-way transfer shares one key
		// across three rails; a retry on any rail is rejected here, inside
		// the insert transaction, not by a read-then-write check.
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}, {Key: "account.kind", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
		{Keys: bson.D{{Key: "account.kind", Value: 1}, {Key: "account.user_id", Value: 1}, {Key: "effective_at", Value: 1}}},
		{Keys: bson.D{{Key: "account.kind", Value: 1}, {Key: "account.business_id", Value: 1}, {Key: "effective_at", Value: 1}}},
	}

	_, err := r.entries.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// PostEntries inserts all entries and applies the derived cache increments in
// one session transaction.
func (r *MongoLedgerRepo) PostEntries(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries to post")
	}

	client := r.entries.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		docs := make([]interface{}, len(entries))
		for i, e := range entries {
			docs[i] = e
		}
		if _, err := r.entries.InsertMany(sc, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateIdempotencyKey
			}
			return fmt.Errorf("insert ledger entries failed: %w", err)
		}

		for _, e := range entries {
			if err := r.applyCacheIncrement(sc, e); err != nil {
				return err
			}
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrDuplicateIdempotencyKey {
			return err
		}
		return fmt.Errorf("ledger posting transaction failed: %w", err)
	}

	return nil
}

// applyCacheIncrement mirrors one entry onto the denormalized balance fields
// of its account owner. System entries carry no cached document.
func (r *MongoLedgerRepo) applyCacheIncrement(sc mongo.SessionContext, e models.LedgerEntry) error {
	inc := bson.M{}
	var coll *mongo.Collection
	var filter bson.M

	switch e.Account.Kind {
	case models.AccountCustomer:
		coll = r.users
		filter = bson.M{"id": e.Account.UserID}
		inc["credits"] = e.Amount
		if e.Amount > 0 {
			inc["lifetime_credits"] = e.Amount
		}
	case models.AccountBusiness:
		coll = r.businesses
		filter = bson.M{"id": e.Account.BusinessID}
		inc["credits_balance"] = e.Amount
		if e.Amount > 0 {
			inc["lifetime_credits_earned"] = e.Amount
		}
	case models.AccountSystem:
		return nil
	default:
		return fmt.Errorf("unknown account kind %q", e.Account.Kind)
	}

	res, err := coll.UpdateOne(sc, filter, bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("cached balance update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("account owner %s not found", e.Account.OwnerRef())
	}
	return nil
}

// FindByIdempotencyKey returns any entry posted under the key, or nil.
func (r *MongoLedgerRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.entries.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch entry for idempotency key: %w", err)
	}
	return &entry, nil
}

// EntriesForAccount returns all entries of an account, oldest first.
func (r *MongoLedgerRepo) EntriesForAccount(ctx context.Context, acct models.Account) ([]models.LedgerEntry, error) {
	filter := bson.M{"account.kind": acct.Kind}
	switch acct.Kind {
	case models.AccountCustomer:
		filter["account.user_id"] = acct.UserID
	case models.AccountBusiness:
		filter["account.business_id"] = acct.BusinessID
	case models.AccountSystem:
		filter["account.system_tag"] = acct.SystemTag
	}

	opts := options.Find().SetSort(bson.D{{Key: "effective_at", Value: 1}})
	cursor, err := r.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}

// EntriesForTransaction returns all entries sharing a transaction id.
func (r *MongoLedgerRepo) EntriesForTransaction(ctx context.Context, transactionID string) ([]models.LedgerEntry, error) {
	cursor, err := r.entries.Find(ctx, bson.M{"transaction_id": transactionID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode transaction entries: %w", err)
	}
	return entries, nil
}

// CachedBalances reads the denormalized balance fields of an account owner.
func (r *MongoLedgerRepo) CachedBalances(ctx context.Context, acct models.Account) (float64, float64, error) {
	switch acct.Kind {
	case models.AccountCustomer:
		var user models.User
		if err := r.users.FindOne(ctx, bson.M{"id": acct.UserID}).Decode(&user); err != nil {
			return 0, 0, fmt.Errorf("failed to fetch user %s: %w", acct.UserID, err)
		}
		return user.Credits, user.LifetimeCredits, nil
	case models.AccountBusiness:
		var biz models.Business
		if err := r.businesses.FindOne(ctx, bson.M{"id": acct.BusinessID}).Decode(&biz); err != nil {
			return 0, 0, fmt.Errorf("failed to fetch business %s: %w", acct.BusinessID, err)
		}
		return biz.CreditsBalance, biz.LifetimeCreditsEarned, nil
	}
	return 0, 0, fmt.Errorf("account kind %q carries no cached balance", acct.Kind)
}

// SetCachedBalances overwrites the denormalized fields of an account owner.
func (r *MongoLedgerRepo) SetCachedBalances(ctx context.Context, acct models.Account, balance, lifetime float64) error {
	var coll *mongo.Collection
	var filter bson.M
	var set bson.M

	switch acct.Kind {
	case models.AccountCustomer:
		coll = r.users
		filter = bson.M{"id": acct.UserID}
		set = bson.M{"credits": balance, "lifetime_credits": lifetime, "updated_at": time.Now()}
	case models.AccountBusiness:
		coll = r.businesses
		filter = bson.M{"id": acct.BusinessID}
		set = bson.M{"credits_balance": balance, "lifetime_credits_earned": lifetime, "updated_at": time.Now()}
	default:
		return fmt.Errorf("account kind %q carries no cached balance", acct.Kind)
	}

	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set cached balances: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("account owner %s not found", acct.OwnerRef())
	}
	return nil
}
