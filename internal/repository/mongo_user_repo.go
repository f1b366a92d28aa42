package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
)

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) UserRepository {
	col := db.Collection(models.UsersCollection)
	// indexes
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return &mongoUserRepo{col: col}
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.SavedAudios == nil {
		u.SavedAudios = []models.SavedAudio{}
	}
	if u.LikedAudios == nil {
		u.LikedAudios = []models.LikedAudio{}
	}
	_, err := r.col.InsertOne(ctx, u)
	return err
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.ProfileImage != nil {
		set["profileImage"] = *upd.ProfileImage
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepo) AddLikedAudio(ctx context.Context, userID, audioID primitive.ObjectID, at time.Time) error {
	// guard on audioId so repeated adds stay set-shaped
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID, "likedAudios.audioId": bson.M{"$ne": audioID}},
		bson.M{"$push": bson.M{"likedAudios": models.LikedAudio{AudioID: audioID, LikedAt: at}}},
	)
	return err
}

func (r *mongoUserRepo) RemoveLikedAudio(ctx context.Context, userID, audioID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"likedAudios": bson.M{"audioId": audioID}}},
	)
	return err
}

func (r *mongoUserRepo) AddSavedAudio(ctx context.Context, userID, audioID primitive.ObjectID, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID, "savedAudios.audioId": bson.M{"$ne": audioID}},
		bson.M{"$push": bson.M{"savedAudios": models.SavedAudio{AudioID: audioID, SavedAt: at}}},
	)
	return err
}

func (r *mongoUserRepo) RemoveSavedAudio(ctx context.Context, userID, audioID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"savedAudios": bson.M{"audioId": audioID}}},
	)
	return err
}

func (r *mongoUserRepo) PullAudioRefs(ctx context.Context, audioIDs []primitive.ObjectID) error {
	if len(audioIDs) == 0 {
		return nil
	}
	in := bson.M{"$in": audioIDs}
	_, err := r.col.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{
			"savedAudios": bson.M{"audioId": in},
			"likedAudios": bson.M{"audioId": in},
		},
	})
	return err
}
