package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wedding-backend/models"
)

const (
	rsvpCollection     = "rsvps"
	wellWishCollection = "wellwishes"
	visitCollection    = "visits"
)

// MongoStore is the document backend. Aggregates run as pipelines on the
// server.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects, pings and makes sure the indexes exist.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &MongoStore{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(rsvpCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("rsvp indexes: %w", err)
	}
	_, err = s.db.Collection(visitCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "invitedBy", Value: 1}, {Key: "visitedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("visit indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Invitations() InvitationRepository {
	return mongoInvitations{s.db.Collection(rsvpCollection)}
}

func (s *MongoStore) WellWishes() WellWishRepository {
	return mongoWellWishes{s.db.Collection(wellWishCollection)}
}

func (s *MongoStore) Visits() VisitRepository {
	return mongoVisits{s.db.Collection(visitCollection)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// literalRegex builds a case-insensitive pattern that matches s literally.
func literalRegex(s string, anchored bool) bson.M {
	pattern := regexp.QuoteMeta(s)
	if anchored {
		pattern = "^" + pattern + "$"
	}
	return bson.M{"$regex": pattern, "$options": "i"}
}

type mongoInvitations struct{ c *mongo.Collection }

func (r mongoInvitations) Upsert(ctx context.Context, inv *models.Invitation, now time.Time) (bool, error) {
	var existing models.Invitation
	err := r.c.FindOne(ctx, bson.M{"email": inv.Email}).Decode(&existing)
	switch {
	case err == nil:
		inv.ID = existing.ID
		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = &now
		if _, err := r.c.ReplaceOne(ctx, bson.M{"_id": existing.ID}, inv); err != nil {
			return false, fmt.Errorf("replace rsvp: %w", err)
		}
		return false, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		inv.EnsureID()
		inv.CreatedAt = now
		inv.UpdatedAt = nil
		if _, err := r.c.InsertOne(ctx, inv); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// lost the race against a concurrent insert; overwrite it
				inv.ID = ""
				return r.Upsert(ctx, inv, now)
			}
			return false, fmt.Errorf("insert rsvp: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("find rsvp: %w", err)
	}
}

func (r mongoInvitations) FindByName(ctx context.Context, name string) (*models.Invitation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNotFound
	}
	re := literalRegex(name, true)
	filter := bson.M{"$or": bson.A{
		bson.M{"invitedPerson": re},
		bson.M{"names": re},
	}}
	var items []models.Invitation
	if err := r.find(ctx, filter, options.Find().SetSort(newestFirst), &items); err != nil {
		return nil, fmt.Errorf("find rsvp by name: %w", err)
	}
	for i := range items {
		if NameMatches(items[i], name) {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r mongoInvitations) find(ctx context.Context, filter any, opts *options.FindOptions, out *[]models.Invitation) error {
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	*out = []models.Invitation{}
	return cur.All(ctx, out)
}

func (r mongoInvitations) All(ctx context.Context) ([]models.Invitation, error) {
	var items []models.Invitation
	if err := r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst), &items); err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return items, nil
}

func listFilter(q ListQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		re := literalRegex(q.Search, false)
		filter["$or"] = bson.A{
			bson.M{"invitedPerson": re},
			bson.M{"email": re},
			bson.M{"names": re},
			bson.M{"invitedBy": re},
		}
	}
	switch q.Status {
	case StatusAttending:
		filter["response"] = models.ResponseYes
	case StatusDeclined:
		filter["response"] = models.ResponseNo
	case StatusPending:
		filter["response"] = bson.M{"$nin": bson.A{models.ResponseYes, models.ResponseNo}}
	}
	return filter
}

func (r mongoInvitations) List(ctx context.Context, q ListQuery) ([]models.Invitation, int64, error) {
	q = q.Normalize()
	filter := listFilter(q)

	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count rsvps: %w", err)
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	var items []models.Invitation
	if err := r.find(ctx, filter, opts, &items); err != nil {
		return nil, 0, fmt.Errorf("list rsvps: %w", err)
	}
	return items, total, nil
}

func (r mongoInvitations) Recent(ctx context.Context, n int) ([]models.Invitation, error) {
	var items []models.Invitation
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(n))
	if err := r.find(ctx, bson.M{}, opts, &items); err != nil {
		return nil, fmt.Errorf("recent rsvps: %w", err)
	}
	return items, nil
}

func (r mongoInvitations) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func isResponse(value string) bson.M {
	return bson.M{"$eq": bson.A{"$response", value}}
}

func (r mongoInvitations) Totals(ctx context.Context) (Totals, error) {
	yes := isResponse(models.ResponseYes)
	no := isResponse(models.ResponseNo)
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                  nil,
			"totalInvitations":     bson.M{"$sum": 1},
			"confirmedGuests":      bson.M{"$sum": bson.M{"$cond": bson.A{yes, "$guestCount", 0}}},
			"declined":             bson.M{"$sum": bson.M{"$cond": bson.A{no, 1, 0}}},
			"responded":            bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$or": bson.A{yes, no}}, 1, 0}}},
			"totalPossibleInvites": bson.M{"$sum": bson.M{"$ifNull": bson.A{"$possibleInvitesInvited", 0}}},
			"validInvitations":     bson.M{"$sum": bson.M{"$cond": bson.A{"$invitationValid", 1, 0}}},
			"unusedSpots": bson.M{"$sum": bson.M{"$cond": bson.A{
				yes,
				bson.M{"$subtract": bson.A{bson.M{"$ifNull": bson.A{"$possibleInvitesInvited", "$guestCount"}}, "$guestCount"}},
				0,
			}}},
			"withMessage": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{bson.M{"$strLenCP": bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{"$message", ""}}}}}, 0}},
				1,
				0,
			}}},
		}}},
	}
	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Totals{}, fmt.Errorf("rsvp totals: %w", err)
	}
	var rows []struct {
		TotalInvitations     int64 `bson:"totalInvitations"`
		ConfirmedGuests      int64 `bson:"confirmedGuests"`
		Declined             int64 `bson:"declined"`
		Responded            int64 `bson:"responded"`
		TotalPossibleInvites int64 `bson:"totalPossibleInvites"`
		ValidInvitations     int64 `bson:"validInvitations"`
		UnusedSpots          int64 `bson:"unusedSpots"`
		WithMessage          int64 `bson:"withMessage"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Totals{}, fmt.Errorf("rsvp totals: %w", err)
	}
	if len(rows) == 0 {
		return Totals{}, nil
	}
	row := rows[0]
	return Totals{
		TotalInvitations:     row.TotalInvitations,
		ConfirmedGuests:      row.ConfirmedGuests,
		Declined:             row.Declined,
		Responded:            row.Responded,
		TotalPossibleInvites: row.TotalPossibleInvites,
		ValidInvitations:     row.ValidInvitations,
		UnusedSpots:          row.UnusedSpots,
		WithMessage:          row.WithMessage,
	}, nil
}

func (r mongoInvitations) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.c.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("count rsvps since: %w", err)
	}
	return n, nil
}

func (r mongoInvitations) CreatedTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	return pluckTimes(ctx, r.c, "createdAt", since)
}

func pluckTimes(ctx context.Context, c *mongo.Collection, field string, since time.Time) ([]time.Time, error) {
	opts := options.Find().SetProjection(bson.M{field: 1, "_id": 0})
	cur, err := c.Find(ctx, bson.M{field: bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s timeline: %w", c.Name(), err)
	}
	defer cur.Close(ctx)

	var times []time.Time
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if dt, ok := doc[field].(interface{ Time() time.Time }); ok {
			times = append(times, dt.Time().UTC())
		}
	}
	return times, cur.Err()
}

type mongoWellWishes struct{ c *mongo.Collection }

func (r mongoWellWishes) Create(ctx context.Context, w *models.WellWish) error {
	w.EnsureID()
	if _, err := r.c.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("insert well wish: %w", err)
	}
	return nil
}

func (r mongoWellWishes) list(ctx context.Context, limit int64) ([]models.WellWish, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	items := []models.WellWish{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r mongoWellWishes) All(ctx context.Context) ([]models.WellWish, error) {
	items, err := r.list(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list well wishes: %w", err)
	}
	return items, nil
}

func (r mongoWellWishes) Recent(ctx context.Context, n int) ([]models.WellWish, error) {
	items, err := r.list(ctx, int64(n))
	if err != nil {
		return nil, fmt.Errorf("recent well wishes: %w", err)
	}
	return items, nil
}

func (r mongoWellWishes) Count(ctx context.Context) (int64, error) {
	n, err := r.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count well wishes: %w", err)
	}
	return n, nil
}

type mongoVisits struct{ c *mongo.Collection }

func (r mongoVisits) Create(ctx context.Context, v *models.Visit) error {
	v.EnsureID()
	if _, err := r.c.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (r mongoVisits) FindRecent(ctx context.Context, m VisitMatch) (bool, error) {
	var or bson.A
	if m.SessionID != "" {
		or = append(or, bson.M{"sessionId": m.SessionID})
	}
	if m.IPHash != "" {
		or = append(or, bson.M{"ipHash": m.IPHash})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{
		"invitedBy": m.InvitedBy,
		"visitedAt": bson.M{"$gte": m.Since},
		"$or":       or,
	}
	err := r.c.FindOne(ctx, filter).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("find recent visit: %w", err)
	}
}

func (r mongoVisits) All(ctx context.Context) ([]models.Visit, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "visitedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	items := []models.Visit{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return items, nil
}

func (r mongoVisits) Summary(ctx context.Context, dayStart, timelineSince time.Time) (VisitSummary, error) {
	var s VisitSummary
	var err error

	if s.Total, err = r.c.CountDocuments(ctx, bson.M{}); err != nil {
		return s, fmt.Errorf("count visits: %w", err)
	}
	sessions, err := r.c.Distinct(ctx, "sessionId", bson.M{"sessionId": bson.M{"$ne": ""}})
	if err != nil {
		return s, fmt.Errorf("count sessions: %w", err)
	}
	s.UniqueSessions = int64(len(sessions))
	if s.Today, err = r.c.CountDocuments(ctx, bson.M{"visitedAt": bson.M{"$gte": dayStart}}); err != nil {
		return s, fmt.Errorf("count visits today: %w", err)
	}
	if s.Times, err = pluckTimes(ctx, r.c, "visitedAt", timelineSince); err != nil {
		return s, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$invitedBy", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return s, fmt.Errorf("visits by inviter: %w", err)
	}
	s.ByInviter = []InviterCount{}
	if err := cur.All(ctx, &s.ByInviter); err != nil {
		return s, fmt.Errorf("visits by inviter: %w", err)
	}
	return s, nil
}
