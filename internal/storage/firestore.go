package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/google"
	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

// FirestoreStore talks to Cloud Firestore through its REST API.
type FirestoreStore struct {
	svc    *firestore.Service
	parent string
}

// NewFirestore authenticates with the service-account file when given and
// falls back to application default credentials otherwise.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: %w: FIRESTORE_PROJECT_ID not set", ErrUnavailable)
	}
	var creds *google.Credentials
	if credentialsFile != "" {
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w: read credentials: %v", ErrUnavailable, err)
		}
		creds, err = google.CredentialsFromJSON(ctx, b, firestore.DatastoreScope)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w: parse credentials: %v", ErrUnavailable, err)
		}
	} else {
		var err error
		creds, err = google.FindDefaultCredentials(ctx, firestore.DatastoreScope)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w: %v", ErrUnavailable, err)
		}
	}
	svc, err := firestore.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("firestore: %w: %v", ErrUnavailable, err)
	}
	return NewFirestoreWithService(svc, projectID), nil
}

func NewFirestoreWithService(svc *firestore.Service, projectID string) *FirestoreStore {
	return &FirestoreStore{
		svc:    svc,
		parent: fmt.Sprintf("projects/%s/databases/(default)/documents", projectID),
	}
}

// Ping lists a single document to prove the connection works.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.svc.Projects.Databases.Documents.List(s.parent, CollectionSearches).PageSize(1).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *FirestoreStore) Save(ctx context.Context, collection string, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	doc, err := toDocument(rec)
	if err != nil {
		return err
	}
	_, err = s.svc.Projects.Databases.Documents.CreateDocument(s.parent, collection, doc).
		DocumentId(rec.ID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("firestore create %s: %w", collection, err)
	}
	return nil
}

func (s *FirestoreStore) QueryRecent(ctx context.Context, collection string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	resp, err := s.svc.Projects.Databases.Documents.List(s.parent, collection).
		OrderBy("timestamp desc").PageSize(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("firestore list %s: %w", collection, err)
	}
	out := make([]Record, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		rec, err := fromDocument(d)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

var recordFields = []string{"query", "result", "source", "user_input", "assistant_response", "session_id"}

// toDocument maps a record to Firestore's typed value JSON.
func toDocument(rec Record) (*firestore.Document, error) {
	flat := map[string]string{
		"query":              rec.Query,
		"result":             rec.Result,
		"source":             rec.Source,
		"user_input":         rec.UserInput,
		"assistant_response": rec.AssistantResponse,
		"session_id":         rec.SessionID,
	}
	fields := map[string]any{
		"timestamp": map[string]string{"timestampValue": rec.Timestamp.UTC().Format(time.RFC3339Nano)},
	}
	for k, v := range flat {
		if v != "" {
			fields[k] = map[string]string{"stringValue": v}
		}
	}
	raw, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc firestore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return &doc, nil
}

func fromDocument(doc *firestore.Document) (Record, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Record{}, err
	}
	parsed := gjson.ParseBytes(raw)
	vals := make(map[string]string, len(recordFields))
	for _, f := range recordFields {
		vals[f] = parsed.Get("fields." + f + ".stringValue").String()
	}
	rec := Record{
		ID:                lastSegment(parsed.Get("name").String()),
		Query:             vals["query"],
		Result:            vals["result"],
		Source:            vals["source"],
		UserInput:         vals["user_input"],
		AssistantResponse: vals["assistant_response"],
		SessionID:         vals["session_id"],
	}
	if ts := parsed.Get("fields.timestamp.timestampValue").String(); ts != "" {
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return rec, nil
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}
