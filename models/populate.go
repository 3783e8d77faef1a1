package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ref is a reference field that is either a bare ObjectID or a populated
// document. Population happens on the read side (the repository fetches the
// referenced documents and attaches them); a Ref always marshals back to its
// ObjectID so stored documents keep plain foreign keys.
type Ref[T any] struct {
	id  primitive.ObjectID
	doc *T
}

// RefTo returns an unpopulated reference to id.
func RefTo[T any](id primitive.ObjectID) Ref[T] {
	return Ref[T]{id: id}
}

// PopulatedRef returns a reference carrying the expanded document.
func PopulatedRef[T any](id primitive.ObjectID, doc *T) Ref[T] {
	return Ref[T]{id: id, doc: doc}
}

// ID returns the referenced ObjectID. It is available in both variants.
func (r Ref[T]) ID() primitive.ObjectID { return r.id }

// Doc returns the populated document, if any.
func (r Ref[T]) Doc() (*T, bool) {
	if r.doc == nil {
		return nil, false
	}
	return r.doc, true
}

// Populated reports whether the reference carries the expanded document.
func (r Ref[T]) Populated() bool { return r.doc != nil }

// IsZero lets the bson encoder honor omitempty on Ref fields.
func (r Ref[T]) IsZero() bool { return r.id.IsZero() && r.doc == nil }

// MarshalBSONValue always writes the ObjectID: population is a read-side
// concern and must never leak expanded documents into storage.
func (r Ref[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.id)
}

// UnmarshalBSONValue tags the variant from the wire shape: an ObjectID value
// becomes a bare reference, an embedded document becomes the populated form.
// Aggregation stages such as $lookup produce the latter.
func (r *Ref[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Null, bsontype.Undefined:
		*r = Ref[T]{}
		return nil

	case bsontype.ObjectID:
		id, ok := raw.ObjectIDOK()
		if !ok {
			return fmt.Errorf("malformed ObjectID reference")
		}
		*r = Ref[T]{id: id}
		return nil

	case bsontype.EmbeddedDocument:
		var doc T
		if err := raw.Unmarshal(&doc); err != nil {
			return fmt.Errorf("decode populated reference: %w", err)
		}
		var header struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := raw.Unmarshal(&header); err != nil {
			return fmt.Errorf("decode populated reference id: %w", err)
		}
		*r = Ref[T]{id: header.ID, doc: &doc}
		return nil

	default:
		return fmt.Errorf("cannot decode %s into a reference", t)
	}
}

// MarshalJSON mirrors the population state: the hex id when bare, the full
// document when populated.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.doc != nil {
		return json.Marshal(r.doc)
	}
	return json.Marshal(r.id.Hex())
}
