package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

func TestUserDocument_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	in := &models.User{
		Name: "Alice", Email: "alice@example.com", Password: "hash", Photo: "p.png",
		Role: "user", Verified: true, CreatedAt: now, UpdatedAt: now,
	}

	doc := newUserDocument(in)
	assert.True(t, doc.ID.IsZero(), "id is assigned by the server")

	doc.ID = bson.NewObjectID()
	raw, err := bson.Marshal(doc)
	assert.NoError(t, err)

	var decoded userDocument
	assert.NoError(t, bson.Unmarshal(raw, &decoded))

	out := decoded.model()
	assert.Equal(t, doc.ID.Hex(), out.ID)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Verified, out.Verified)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))

	assert.Equal(t, "alice@example.com", bson.Raw(raw).Lookup("email").StringValue())
	assert.Equal(t, "hash", bson.Raw(raw).Lookup("password").StringValue())
}
