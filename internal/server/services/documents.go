// Package services implements the server use cases behind the gRPC and
// HTTP front ends.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/dbx"
	sc "github.com/dmitrijs2005/mandaditos/internal/server/config"
	"github.com/dmitrijs2005/mandaditos/internal/server/models"
	"github.com/dmitrijs2005/mandaditos/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	now = time.Now
)

// DocumentService stores documents of the known collections.
type DocumentService interface {
	// Create upserts by originID and returns the document id.
	Create(ctx context.Context, collection, originID string, payload map[string]any) (string, error)
	// Update merges payload into the document; common.ErrorNotFound when it is gone.
	Update(ctx context.Context, collection, id string, payload map[string]any) error
	List(ctx context.Context, collection, field, value string) ([]*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
	// Export writes a JSON snapshot of the collection to object storage and
	// returns its key and the number of documents.
	Export(ctx context.Context, collection string) (string, int, error)
}

type documentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewDocumentService(db *sql.DB, rm repomanager.RepositoryManager, c *sc.Config) DocumentService {
	return &documentService{db: db, repomanager: rm, config: c}
}

func checkCollection(name string) error {
	if !common.KnownCollection(name) {
		return fmt.Errorf("%q: %w", name, common.ErrUnknownCollection)
	}
	return nil
}

func (s *documentService) Create(ctx context.Context, collection, originID string, payload map[string]any) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	d := &models.Document{Collection: collection, OriginID: originID, Payload: payload}
	id, err := s.repomanager.Documents(s.db).Upsert(ctx, d)
	if err != nil {
		return "", fmt.Errorf("error creating document: %w", err)
	}
	return id, nil
}

func (s *documentService) Update(ctx context.Context, collection, id string, payload map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return s.repomanager.Documents(s.db).Merge(ctx, collection, id, payload)
}

func (s *documentService) List(ctx context.Context, collection, field, value string) ([]*models.Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return s.repomanager.Documents(s.db).List(ctx, collection, field, value)
}

func (s *documentService) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return s.repomanager.Documents(s.db).Delete(ctx, collection, id)
}

// snapshot is the JSON layout of an export object.
type snapshot struct {
	Collection string         `json:"collection"`
	ExportedAt time.Time      `json:"exportedAt"`
	Documents  []snapshotItem `json:"documents"`
}

type snapshotItem struct {
	ID        string         `json:"id"`
	OriginID  string         `json:"originId"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// GetExportKey names the object of one export.
func GetExportKey(collection string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%02d/%02d/%v.json", collection, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *documentService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *documentService) Export(ctx context.Context, collection string) (string, int, error) {
	if err := checkCollection(collection); err != nil {
		return "", 0, err
	}

	var docs []*models.Document
	err := dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		docs, err = s.repomanager.Documents(tx).List(ctx, collection, "", "")
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("error reading collection: %w", err)
	}

	t := now().UTC()
	snap := snapshot{Collection: collection, ExportedAt: t, Documents: make([]snapshotItem, 0, len(docs))}
	for _, d := range docs {
		snap.Documents = append(snap.Documents, snapshotItem{
			ID: d.ID, OriginID: d.OriginID, Payload: d.Payload, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		})
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", 0, fmt.Errorf("error encoding snapshot: %w", err)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("error configuring object storage: %w", err)
	}

	bucket := s.config.S3Bucket
	key := GetExportKey(collection, t)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("error uploading snapshot: %w", err)
	}

	return key, len(docs), nil
}
