package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/dbx"
	sc "github.com/dmitrijs2005/mandaditos/internal/server/config"
	"github.com/dmitrijs2005/mandaditos/internal/server/models"
	"github.com/dmitrijs2005/mandaditos/internal/server/repositories/documents"
	"github.com/dmitrijs2005/mandaditos/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const docID = "5f0c2a53-3c2e-4a53-9f27-0c8a4f1d2b10"

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	repo documents.Repository
	dbs  []dbx.DBTX
}

func (f *fakeRepoMgr) Documents(db dbx.DBTX) documents.Repository {
	f.dbs = append(f.dbs, db)
	return f.repo
}

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "backups",
	}
}

func newDocSvc(t *testing.T) (DocumentService, *documents.MockRepository, sqlmock.Sqlmock, *fakeRepoMgr) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := documents.NewMockRepository(ctrl)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := &fakeRepoMgr{repo: repo}
	return NewDocumentService(db, rm, testConfig()), repo, mock, rm
}

func TestDocumentService_Create(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		setup      func(m *documents.MockRepository)
		wantID     string
		wantErr    error
	}{
		{
			name:       "upserts by origin",
			collection: "errands",
			setup: func(m *documents.MockRepository) {
				m.EXPECT().
					Upsert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, d *models.Document) (string, error) {
						assert.Equal(t, "errands", d.Collection)
						assert.Equal(t, "o-1", d.OriginID)
						return docID, nil
					})
			},
			wantID: docID,
		},
		{
			name:       "unknown collection",
			collection: "invoices",
			wantErr:    common.ErrUnknownCollection,
		},
		{
			name:       "repository error",
			collection: "expenses",
			setup: func(m *documents.MockRepository) {
				m.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return("", errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newDocSvc(t)
			if tt.setup != nil {
				tt.setup(repo)
			}

			id, err := svc.Create(context.Background(), tt.collection, "o-1", map[string]any{"fee": "20"})
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantID == "":
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestDocumentService_Update(t *testing.T) {
	svc, repo, _, _ := newDocSvc(t)
	ctx := context.Background()

	repo.EXPECT().Merge(ctx, "errands", docID, map[string]any{"paid": true}).Return(nil)
	repo.EXPECT().Merge(ctx, "errands", docID, gomock.Any()).Return(common.ErrorNotFound)

	assert.NoError(t, svc.Update(ctx, "errands", docID, map[string]any{"paid": true}))
	assert.ErrorIs(t, svc.Update(ctx, "errands", docID, map[string]any{}), common.ErrorNotFound)
	assert.ErrorIs(t, svc.Update(ctx, "errands", "not-a-uuid", nil), common.ErrorNotFound)
}

func TestDocumentService_ListAndDelete(t *testing.T) {
	svc, repo, _, _ := newDocSvc(t)
	ctx := context.Background()

	want := []*models.Document{{ID: docID, OriginID: "o"}}
	repo.EXPECT().List(ctx, "day-openings", "date", "2024-05-01").Return(want, nil)
	repo.EXPECT().Delete(ctx, "expenses", docID).Return(nil)

	got, err := svc.List(ctx, "day-openings", "date", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, svc.Delete(ctx, "expenses", docID))

	_, err = svc.List(ctx, "nope", "", "")
	assert.ErrorIs(t, err, common.ErrUnknownCollection)
}

func TestDocumentService_Export(t *testing.T) {
	svc, repo, mock, rm := newDocSvc(t)
	ctx := context.Background()

	origLoad, origPut, origNow := loadDefaultAWSConfig, putObject, now
	t.Cleanup(func() {
		loadDefaultAWSConfig, putObject, now = origLoad, origPut, origNow
	})
	now = func() time.Time { return time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC) }

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{Region: lo.Region}, nil
	}

	var uploaded struct {
		bucket, key string
		body        []byte
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		uploaded.bucket, uploaded.key = *in.Bucket, *in.Key
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		uploaded.body = b
		return &s3.PutObjectOutput{}, nil
	}

	mock.ExpectBegin()
	repo.EXPECT().List(gomock.Any(), "errands", "", "").Return([]*models.Document{
		{ID: docID, OriginID: "o1", Payload: map[string]any{"fee": "20"}},
	}, nil)
	mock.ExpectCommit()

	key, n, err := svc.Export(ctx, "errands")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, strings.HasPrefix(key, "exports/errands/2024/05/01/"), key)
	assert.Equal(t, "backups", uploaded.bucket)
	assert.Equal(t, key, uploaded.key)

	var snap snapshot
	require.NoError(t, json.Unmarshal(uploaded.body, &snap))
	assert.Equal(t, "errands", snap.Collection)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "o1", snap.Documents[0].OriginID)

	require.Len(t, rm.dbs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentService_ExportErrors(t *testing.T) {
	t.Run("list fails rolls back", func(t *testing.T) {
		svc, repo, mock, _ := newDocSvc(t)

		mock.ExpectBegin()
		repo.EXPECT().List(gomock.Any(), "expenses", "", "").Return(nil, errors.New("boom"))
		mock.ExpectRollback()

		_, _, err := svc.Export(context.Background(), "expenses")
		assert.ErrorContains(t, err, "boom")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upload fails", func(t *testing.T) {
		svc, repo, mock, _ := newDocSvc(t)

		origLoad, origPut := loadDefaultAWSConfig, putObject
		t.Cleanup(func() { loadDefaultAWSConfig, putObject = origLoad, origPut })
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, nil
		}
		putObject = func(*s3.Client, context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("bucket missing")
		}

		mock.ExpectBegin()
		repo.EXPECT().List(gomock.Any(), "errands", "", "").Return(nil, nil)
		mock.ExpectCommit()

		_, _, err := svc.Export(context.Background(), "errands")
		assert.ErrorContains(t, err, "bucket missing")
	})

	t.Run("aws config fails", func(t *testing.T) {
		svc, repo, mock, _ := newDocSvc(t)

		origLoad := loadDefaultAWSConfig
		t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no creds")
		}

		mock.ExpectBegin()
		repo.EXPECT().List(gomock.Any(), "errands", "", "").Return(nil, nil)
		mock.ExpectCommit()

		_, _, err := svc.Export(context.Background(), "errands")
		assert.ErrorContains(t, err, "no creds")
	})
}
