// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/model"
)

// GetGCSObjectName is the context key under which trigger commands publish
// the object that started a workflow.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification is the JSON payload Cloud Storage publishes to
// Pub/Sub when an object is finalized.
type GCSPubSubNotification struct {
	Kind           string                 `json:"kind"`
	ID             string                 `json:"id"`
	SelfLink       string                 `json:"selfLink"`
	Name           string                 `json:"name"`
	Bucket         string                 `json:"bucket"`
	Generation     string                 `json:"generation"`
	MetaGeneration string                 `json:"metageneration"`
	ContentType    string                 `json:"contentType"`
	TimeCreated    string                 `json:"timeCreated"`
	Updated        string                 `json:"updated"`
	StorageClass   string                 `json:"storageClass"`
	Size           string                 `json:"size"`
	MD5Hash        string                 `json:"md5Hash"`
	MediaLink      string                 `json:"mediaLink"`
	MetaData       map[string]interface{} `json:"metadata"`
	Crc32c         string                 `json:"crc32c"`
	ETag           string                 `json:"etag"`
}

// GCSObject identifies one stored object.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

func (o *GCSObject) String() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// Raw batch object suffixes.
const (
	RawBatchSuffix           = ".json"
	CompressedRawBatchSuffix = ".json.gz"
)

// ErrNotRawBatch is returned for objects that are not archived raw batches.
var ErrNotRawBatch = errors.New("object is not a raw batch")

// IsRawBatch reports whether an object name looks like an archived batch
// below prefix.
func IsRawBatch(prefix, name string) bool {
	if prefix != "" && !strings.HasPrefix(name, strings.TrimSuffix(prefix, "/")+"/") {
		return false
	}
	return strings.HasSuffix(name, RawBatchSuffix) || strings.HasSuffix(name, CompressedRawBatchSuffix)
}

// DecodeRawBatch reads a raw batch that may be gzip-compressed. The
// compression is detected from the content, not the object name; any other
// recognised binary format is rejected with ErrNotRawBatch.
func DecodeRawBatch(r io.Reader) ([]model.RawRecord, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(262)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read raw batch header: %w", err)
	}
	var src io.Reader = br
	kind, _ := filetype.Match(head)
	switch {
	case kind == filetype.Unknown:
	case kind.Extension == "gz":
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip raw batch: %w", err)
		}
		defer gz.Close()
		src = gz
	default:
		return nil, fmt.Errorf("%w: unsupported content type %s", ErrNotRawBatch, kind.MIME.Value)
	}
	return model.LoadRawRecords(src)
}

// RawArchive stores raw batches in Cloud Storage between fetch and clean.
type RawArchive struct {
	client      *storage.Client
	iam         *credentials.IamCredentialsClient
	bucket      string
	prefix      string
	compress    bool
	signerEmail string
}

// NewRawArchive builds an archive over the configured raw bucket. iamClient
// is only needed for SignedURL.
func NewRawArchive(client *storage.Client, iamClient *credentials.IamCredentialsClient, config *Config) *RawArchive {
	return &RawArchive{
		client:      client,
		iam:         iamClient,
		bucket:      config.Storage.RawBucket,
		prefix:      config.Storage.RawPrefix,
		compress:    config.Storage.Compress,
		signerEmail: config.Application.SignerServiceAccountEmail,
	}
}

// ObjectName is the object a batch id is stored under.
func (a *RawArchive) ObjectName(batchID string) string {
	suffix := RawBatchSuffix
	if a.compress {
		suffix = CompressedRawBatchSuffix
	}
	return path.Join(a.prefix, batchID+suffix)
}

// Write archives a batch and returns the stored object.
func (a *RawArchive) Write(ctx context.Context, batchID string, records []model.RawRecord) (*GCSObject, error) {
	obj := &GCSObject{Bucket: a.bucket, Name: a.ObjectName(batchID), MIMEType: "application/json"}
	w := a.client.Bucket(a.bucket).Object(obj.Name).NewWriter(ctx)
	w.ContentType = obj.MIMEType

	var dst io.Writer = w
	var gz *gzip.Writer
	if a.compress {
		w.ContentType = "application/gzip"
		obj.MIMEType = w.ContentType
		gz = gzip.NewWriter(w)
		dst = gz
	}
	if err := model.WriteRawRecords(dst, records); err != nil {
		_ = w.Close()
		return nil, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to finish gzip stream for %s: %w", obj, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", obj, err)
	}
	slog.InfoContext(ctx, "archived raw batch", "object", obj.String(), "records", len(records))
	return obj, nil
}

// Read loads an archived batch.
func (a *RawArchive) Read(ctx context.Context, obj *GCSObject) ([]model.RawRecord, error) {
	return ReadRawBatch(ctx, a.client, obj)
}

// ReadRawBatch loads a raw batch from any bucket.
func ReadRawBatch(ctx context.Context, client *storage.Client, obj *GCSObject) ([]model.RawRecord, error) {
	reader, err := client.Bucket(obj.Bucket).Object(obj.Name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS reader for %s: %w", obj, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close GCS reader", "object", obj.String(), "error", err)
		}
	}()
	records, err := DecodeRawBatch(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", obj, err)
	}
	return records, nil
}

// SignedURL returns a V4 signed GET URL for an archived object. The URL is
// signed by the configured signer service account through the IAM
// credentials API, so no private key is needed locally.
func (a *RawArchive) SignedURL(ctx context.Context, name string, expires time.Duration) (string, error) {
	if a.iam == nil || a.signerEmail == "" {
		return "", errors.New("signed URLs need an IAM client and application.signer_service_account_email")
	}
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: a.signerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := a.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", a.signerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}
	u, err := a.client.Bucket(a.bucket).SignedURL(name, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", a.bucket, name, err)
	}
	return u, nil
}
