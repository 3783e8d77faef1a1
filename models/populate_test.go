package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type refHolder struct {
	Ref Ref[Store] `bson:"ref"`
}

func TestRef_BareRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()

	data, err := bson.Marshal(refHolder{Ref: RefTo[Store](id)})
	require.NoError(t, err)

	// Storage always keeps the plain foreign key
	raw := bson.Raw(data).Lookup("ref")
	assert.Equal(t, bsontype.ObjectID, raw.Type)

	var decoded refHolder
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded.Ref.ID())
	assert.False(t, decoded.Ref.Populated())
}

func TestRef_PopulatedMarshalsToObjectID(t *testing.T) {
	store := Store{ID: primitive.NewObjectID(), Name: "Ada Threads"}

	data, err := bson.Marshal(refHolder{Ref: PopulatedRef(store.ID, &store)})
	require.NoError(t, err)

	raw := bson.Raw(data).Lookup("ref")
	require.Equal(t, bsontype.ObjectID, raw.Type)
	assert.Equal(t, store.ID, raw.ObjectID())
}

func TestRef_UnmarshalsEmbeddedDocument(t *testing.T) {
	store := Store{
		ID:         primitive.NewObjectID(),
		Name:       "Ada Threads",
		StoreEmail: "hello@adathreads.ng",
		Status:     StoreStatusActive,
	}

	// An embedded document, as produced by aggregation lookups
	data, err := bson.Marshal(struct {
		Ref Store `bson:"ref"`
	}{Ref: store})
	require.NoError(t, err)

	var decoded refHolder
	require.NoError(t, bson.Unmarshal(data, &decoded))

	require.True(t, decoded.Ref.Populated())
	assert.Equal(t, store.ID, decoded.Ref.ID())

	doc, ok := decoded.Ref.Doc()
	require.True(t, ok)
	assert.Equal(t, "Ada Threads", doc.Name)
	assert.Equal(t, "hello@adathreads.ng", doc.StoreEmail)
}

func TestRef_UnmarshalsNullToZero(t *testing.T) {
	data, err := bson.Marshal(struct {
		Ref *Store `bson:"ref"`
	}{Ref: nil})
	require.NoError(t, err)

	var decoded refHolder
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.True(t, decoded.Ref.IsZero())
	assert.False(t, decoded.Ref.Populated())
}

func TestRef_RejectsOtherTypes(t *testing.T) {
	data, err := bson.Marshal(struct {
		Ref string `bson:"ref"`
	}{Ref: "not-a-reference"})
	require.NoError(t, err)

	var decoded refHolder
	err = bson.Unmarshal(data, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot decode")
}

func TestRef_JSONMirrorsPopulationState(t *testing.T) {
	id := primitive.NewObjectID()

	bare, err := json.Marshal(RefTo[Store](id))
	require.NoError(t, err)
	assert.Equal(t, `"`+id.Hex()+`"`, string(bare))

	store := Store{ID: id, Name: "Ada Threads"}
	populated, err := json.Marshal(PopulatedRef(id, &store))
	require.NoError(t, err)
	assert.Contains(t, string(populated), `"name":"Ada Threads"`)
}

func TestRef_DocOnBareRef(t *testing.T) {
	ref := RefTo[Store](primitive.NewObjectID())
	doc, ok := ref.Doc()
	assert.False(t, ok)
	assert.Nil(t, doc)
}
