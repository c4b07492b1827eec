package posts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
)

// CollectionName is the MongoDB collection holding posts.
const CollectionName = "posts"

type postDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	Category  string        `bson:"category"`
	Image     string        `bson:"image"`
	User      bson.ObjectID `bson:"user"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type authorDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Photo     string        `bson:"photo"`
	Role      string        `bson:"role"`
	Verified  bool          `bson:"verified"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// joinedDocument is the shape produced by the $lookup pipelines.
type joinedDocument struct {
	Post   postDocument   `bson:",inline"`
	Author authorDocument `bson:"author"`
}

func (d postDocument) model() models.Post {
	return models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Image:     d.Image,
		UserID:    d.User.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d joinedDocument) model() models.PostWithAuthor {
	return models.PostWithAuthor{
		Post: d.Post.model(),
		Author: models.User{
			ID:        d.Author.ID.Hex(),
			Name:      d.Author.Name,
			Email:     d.Author.Email,
			Photo:     d.Author.Photo,
			Role:      d.Author.Role,
			Verified:  d.Author.Verified,
			CreatedAt: d.Author.CreatedAt,
			UpdatedAt: d.Author.UpdatedAt,
		},
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func objectIDs(ids ...string) ([]bson.ObjectID, error) {
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return nil, common.ErrorInvalidID
		}
		out = append(out, oid)
	}
	return out, nil
}

// searchFilter matches search literally and case-insensitively in title or
// content. An empty search matches everything.
func searchFilter(search string) bson.D {
	if search == "" {
		return bson.D{}
	}
	re := bson.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: re}},
		bson.D{{Key: "content", Value: re}},
	}}}
}

func authorFilter(author bson.ObjectID, search string) bson.D {
	return append(bson.D{{Key: "user", Value: author}}, searchFilter(search)...)
}

func ownedFilter(author, id bson.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user", Value: author}}
}

// updateDocument builds the $set for a patch. updated_at is always set.
func updateDocument(patch models.PostPatch, updatedAt time.Time) bson.D {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	set = append(set, bson.E{Key: "updated_at", Value: updatedAt})
	return bson.D{{Key: "$set", Value: set}}
}

func joinAuthorStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: users.CollectionName},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: "$author"}},
	}
}

func listPipeline(q models.PostQuery) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: searchFilter(q.Search)}}}
	p = append(p, joinAuthorStages()...)
	return append(p,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
		bson.D{{Key: "$skip", Value: int64(q.Skip())}},
		bson.D{{Key: "$limit", Value: int64(q.Limit)}},
	)
}

func getPipeline(id bson.ObjectID) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}
	return append(p, joinAuthorStages()...)
}

func (r *MongoRepository) ListByAuthor(ctx context.Context, userID string, q models.PostQuery) ([]models.Post, error) {
	ids, err := objectIDs(userID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, authorFilter(ids[0], q.Search), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	result := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (r *MongoRepository) GetByAuthor(ctx context.Context, userID, id string) (*models.Post, error) {
	ids, err := objectIDs(userID, id)
	if err != nil {
		return nil, err
	}

	var doc postDocument
	if err := r.coll.FindOne(ctx, ownedFilter(ids[0], ids[1])).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	p := doc.model()
	return &p, nil
}

func (r *MongoRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	ids, err := objectIDs(post.UserID)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, postDocument{
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Image:     post.Image,
		User:      ids[0],
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("mongo error: unexpected inserted id %T", res.InsertedID)
	}
	post.ID = oid.Hex()

	return post, nil
}

func (r *MongoRepository) Update(ctx context.Context, userID, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error) {
	ids, err := objectIDs(userID, id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	err = r.coll.FindOneAndUpdate(ctx, ownedFilter(ids[0], ids[1]), updateDocument(patch, updatedAt), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	p := doc.model()
	return &p, nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID, id string) error {
	ids, err := objectIDs(userID, id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, ownedFilter(ids[0], ids[1]))
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error) {
	docs, err := r.aggregate(ctx, listPipeline(q))
	if err != nil {
		return nil, err
	}

	result := make([]models.PostWithAuthor, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.PostWithAuthor, error) {
	ids, err := objectIDs(id)
	if err != nil {
		return nil, err
	}

	docs, err := r.aggregate(ctx, getPipeline(ids[0]))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}

	p := docs[0].model()
	return &p, nil
}

func (r *MongoRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]joinedDocument, error) {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	var docs []joinedDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return docs, nil
}
