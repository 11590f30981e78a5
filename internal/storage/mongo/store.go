// Package mongo stores users, parties and banners as MongoDB documents,
// mirroring the collection layout the mPoster clients were first built against.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	usersCollection   = "users"
	partiesCollection = "parties"
	bannersCollection = "banners"
)

// Store provides MongoDB-backed persistence.
type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	parties *mongo.Collection
	banners *mongo.Collection
	now     func() time.Time
}

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	Mobile          string             `bson:"mobile"`
	PartyRef        *int64             `bson:"partyRef,omitempty"`
	Role            string             `bson:"role"`
	ProfileImageRef *string            `bson:"profileImageRef,omitempty"`
	PasswordHash    string             `bson:"passwordHash"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type partyDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PID          int64              `bson:"pid"`
	PartyLogoURL string             `bson:"partyLogoUrl"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	PartyColor   string             `bson:"partyColor"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type bannerDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BannerCode  *int64             `bson:"bannerCode,omitempty"`
	UserID      *int64             `bson:"userId,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// columns written by storage.*Assignments, mapped onto document keys
var fieldNames = map[string]string{
	"name":              "name",
	"email":             "email",
	"mobile":            "mobile",
	"role":              "role",
	"password_hash":     "passwordHash",
	"party_ref":         "partyRef",
	"profile_image_ref": "profileImageRef",
	"pid":               "pid",
	"party_logo_url":    "partyLogoUrl",
	"title":             "title",
	"description":       "description",
	"party_color":       "partyColor",
	"banner_code":       "bannerCode",
	"user_id":           "userId",
}

// NewStore connects to uri, selects database and ensures indexes.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:  client,
		users:   db.Collection(usersCollection),
		parties: db.Collection(partiesCollection),
		banners: db.Collection(bannersCollection),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.parties, mongo.IndexModel{Keys: bson.D{{Key: "pid", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.banners, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := s.now()
	doc := userDoc{
		ID:              primitive.NewObjectID(),
		Name:            user.Name,
		Email:           user.Email,
		Mobile:          user.Mobile,
		PartyRef:        user.PartyRef,
		Role:            user.Role,
		ProfileImageRef: user.ProfileImageRef,
		PasswordHash:    user.PasswordHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return models.User{}, mapWriteErr(err)
	}
	return doc.model(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, mapReadErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	var doc userDoc
	if err := s.updateOne(ctx, s.users, id, storage.UserAssignments(patch), &doc); err != nil {
		return models.User{}, err
	}
	return doc.model(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var docs []userDoc
	if err := s.findAll(ctx, s.users, bson.M{}, &docs); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) CreateParty(ctx context.Context, party models.Party) (models.Party, error) {
	now := s.now()
	doc := partyDoc{
		ID:           primitive.NewObjectID(),
		PID:          party.PID,
		PartyLogoURL: party.PartyLogoURL,
		Title:        party.Title,
		Description:  party.Description,
		PartyColor:   party.PartyColor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.parties.InsertOne(ctx, doc); err != nil {
		return models.Party{}, mapWriteErr(err)
	}
	return doc.model(), nil
}

func (s *Store) ListParties(ctx context.Context) ([]models.Party, error) {
	var docs []partyDoc
	if err := s.findAll(ctx, s.parties, bson.M{}, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Party, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindParty(ctx context.Context, id string) (models.Party, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Party{}, storage.ErrNotFound
	}
	var doc partyDoc
	if err := s.parties.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Party{}, mapReadErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateParty(ctx context.Context, id string, patch models.PartyPatch) (models.Party, error) {
	var doc partyDoc
	if err := s.updateOne(ctx, s.parties, id, storage.PartyAssignments(patch), &doc); err != nil {
		return models.Party{}, err
	}
	return doc.model(), nil
}

func (s *Store) DeleteParty(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}
	res, err := s.parties.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	now := s.now()
	doc := bannerDoc{
		ID:          primitive.NewObjectID(),
		BannerCode:  banner.BannerCode,
		UserID:      banner.UserID,
		Title:       banner.Title,
		Description: banner.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.banners.InsertOne(ctx, doc); err != nil {
		return models.Banner{}, mapWriteErr(err)
	}
	return doc.model(), nil
}

func (s *Store) ListBanners(ctx context.Context) ([]models.Banner, error) {
	return s.listBanners(ctx, bson.M{})
}

func (s *Store) ListBannersByUser(ctx context.Context, userID int64) ([]models.Banner, error) {
	return s.listBanners(ctx, bson.M{"userId": userID})
}

func (s *Store) listBanners(ctx context.Context, filter bson.M) ([]models.Banner, error) {
	var docs []bannerDoc
	if err := s.findAll(ctx, s.banners, filter, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Banner, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindBanner(ctx context.Context, id string) (models.Banner, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Banner{}, storage.ErrNotFound
	}
	var doc bannerDoc
	if err := s.banners.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Banner{}, mapReadErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateBanner(ctx context.Context, id string, patch models.BannerPatch) (models.Banner, error) {
	var doc bannerDoc
	if err := s.updateOne(ctx, s.banners, id, storage.BannerAssignments(patch), &doc); err != nil {
		return models.Banner{}, err
	}
	return doc.model(), nil
}

// updateOne applies sets with $set, turns nil values into $unset, and decodes
// the post-update document into out.
func (s *Store) updateOne(ctx context.Context, coll *mongo.Collection, id string, sets []storage.Assignment, out any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}
	set := bson.M{"updatedAt": s.now()}
	unset := bson.M{}
	for _, a := range sets {
		key := fieldNames[a.Column]
		if a.Value == nil {
			unset[key] = ""
			continue
		}
		set[key] = a.Value
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(out); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return mapReadErr(err)
	}
	return nil
}

func (s *Store) findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func mapReadErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrAlreadyExists
	}
	return err
}

func (d userDoc) model() models.User {
	return models.User{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		Mobile:          d.Mobile,
		PartyRef:        d.PartyRef,
		Role:            d.Role,
		ProfileImageRef: d.ProfileImageRef,
		PasswordHash:    d.PasswordHash,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (d partyDoc) model() models.Party {
	return models.Party{
		ID:           d.ID.Hex(),
		PID:          d.PID,
		PartyLogoURL: d.PartyLogoURL,
		Title:        d.Title,
		Description:  d.Description,
		PartyColor:   d.PartyColor,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d bannerDoc) model() models.Banner {
	return models.Banner{
		ID:          d.ID.Hex(),
		BannerCode:  d.BannerCode,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
