package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// PhotoBucket wraps the R2 bucket that holds donation listing photos.
// Clients upload and download directly through presigned URLs; the API never
// proxies image bytes.
type PhotoBucket struct {
	client *s3.Client
	bucket string
}

var Photos *PhotoBucket

// InitR2 builds the shared PhotoBucket from static credentials and the
// account-scoped R2 endpoint.
func InitR2(accessKey, secretKey, accountID, bucket, region string) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		Region:      region,
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	Photos = &PhotoBucket{client: client, bucket: bucket}
	log.Println("Successfully initialized R2 photo bucket")
}

// PhotoKey builds the object key for a photo of the given donation.
func PhotoKey(donationID, photoID uuid.UUID, filename string) string {
	return fmt.Sprintf("donations/%s/%s_%s", donationID, photoID, filename)
}

// PresignPut creates a presigned URL for uploading a photo.
func (b *PhotoBucket) PresignPut(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(b.client)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignGet creates a presigned URL for viewing a photo.
func (b *PhotoBucket) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(b.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Exists checks that an uploaded photo actually landed in the bucket before
// its database row is created.
func (b *PhotoBucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
