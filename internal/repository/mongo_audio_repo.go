package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
)

type mongoAudioRepo struct {
	col *mongo.Collection
}

func NewMongoAudioRepo(db *mongo.Database) AudioRepository {
	col := db.Collection(models.AudiosCollection)
	// indexes
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "viewCount", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	})
	return &mongoAudioRepo{col: col}
}

func (r *mongoAudioRepo) Insert(ctx context.Context, a *models.Audio) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Comments == nil {
		a.Comments = []primitive.ObjectID{}
	}
	if a.Likes == nil {
		a.Likes = []primitive.ObjectID{}
	}
	if a.ViewedBy == nil {
		a.ViewedBy = []models.ViewRecord{}
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *mongoAudioRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Audio, error) {
	var a models.Audio
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAudioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *mongoAudioRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Audio, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var audios []models.Audio
	if err := cur.All(ctx, &audios); err != nil {
		return nil, err
	}
	return audios, nil
}

func (r *mongoAudioRepo) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Audio, error) {
	cur, err := r.col.Find(ctx, bson.M{"author": authorID})
	if err != nil {
		return nil, err
	}
	var audios []models.Audio
	if err := cur.All(ctx, &audios); err != nil {
		return nil, err
	}
	return audios, nil
}

// buildListFilter translates catalog options into the Mongo query. The
// horizon clause, the exact-match filters and the search clause combine
// with AND; the search fields combine with OR.
func buildListFilter(opts ListOptions) bson.M {
	filter := bson.M{"createdAt": bson.M{"$lte": opts.Horizon}}

	if !opts.Author.IsZero() {
		filter["author"] = opts.Author
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Search != "" {
		quoted := regexp.QuoteMeta(opts.Search)
		rx := primitive.Regex{Pattern: quoted, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"category": rx},
			bson.M{"tags": rx},
		}
	}
	return filter
}

func (r *mongoAudioRepo) List(ctx context.Context, opts ListOptions) ([]models.Audio, int64, error) {
	filter := buildListFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	if opts.SortByViews {
		sort = bson.D{{Key: "viewCount", Value: -1}}
	}
	findOpts := options.Find().
		SetSort(sort).
		SetSkip(int64(opts.Page-1) * int64(opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	var audios []models.Audio
	if err := cur.All(ctx, &audios); err != nil {
		return nil, 0, err
	}
	return audios, total, nil
}

func (r *mongoAudioRepo) Search(ctx context.Context, opts SearchOptions) ([]models.Audio, error) {
	filter := bson.M{}
	if opts.Query != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
			bson.M{"category": rx},
		}
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "viewCount", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var audios []models.Audio
	if err := cur.All(ctx, &audios); err != nil {
		return nil, err
	}
	return audios, nil
}

func (r *mongoAudioRepo) SetLiked(ctx context.Context, audioID, userID primitive.ObjectID, liked bool) (*models.Audio, error) {
	update := bson.M{"$pull": bson.M{"likes": userID}}
	if liked {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Audio
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": audioID}, update, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrAudioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkViewed matches only when the user has no view record yet, so the
// append and the counter increment land in one atomic update or not at
// all. A zero match on an existing audio means "already viewed".
func (r *mongoAudioRepo) MarkViewed(ctx context.Context, audioID, userID primitive.ObjectID, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": audioID, "viewedBy.userId": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"viewedBy": models.ViewRecord{UserID: userID, Timestamp: at}},
			"$inc":  bson.M{"viewCount": 1},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoAudioRepo) PushComment(ctx context.Context, audioID, commentID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": audioID},
		bson.M{"$push": bson.M{"comments": commentID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAudioNotFound
	}
	return nil
}

func (r *mongoAudioRepo) DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"author": authorID})
	return err
}
