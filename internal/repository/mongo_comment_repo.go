package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
)

type mongoCommentRepo struct {
	col *mongo.Collection
}

func NewMongoCommentRepo(db *mongo.Database) CommentRepository {
	col := db.Collection(models.CommentsCollection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "audio", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return &mongoCommentRepo{col: col}
}

func (r *mongoCommentRepo) Insert(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

// FindByAudio returns the audio's comments newest first.
func (r *mongoCommentRepo) FindByAudio(ctx context.Context, audioID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := r.col.Find(ctx, bson.M{"audio": audioID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *mongoCommentRepo) DeleteByAudioIDs(ctx context.Context, audioIDs []primitive.ObjectID) error {
	if len(audioIDs) == 0 {
		return nil
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"audio": bson.M{"$in": audioIDs}})
	return err
}
