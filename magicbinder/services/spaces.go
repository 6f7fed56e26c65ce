package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// SpacesService stores card face images in an S3-compatible bucket
// (DigitalOcean Spaces) and builds their public CDN URLs.
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	cardRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, cardRoot string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load spaces config: %w", err)
	}

	return &SpacesService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		cardRoot: strings.Trim(cardRoot, "/"),
	}, nil
}

func (s *SpacesService) VerifyConnection(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("spaces bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}

func (s *SpacesService) imageKey(cardID uuid.UUID, faceIndex int) string {
	return fmt.Sprintf("%s/%s/%d.jpg", s.cardRoot, cardID, faceIndex)
}

// CardImageURL is the public CDN URL for one face image.
func (s *SpacesService) CardImageURL(cardID uuid.UUID, faceIndex int) string {
	return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s",
		s.bucket, s.region, s.imageKey(cardID, faceIndex))
}

// UploadCardImage stores a face image publicly readable and returns its URL.
func (s *SpacesService) UploadCardImage(ctx context.Context, cardID uuid.UUID, faceIndex int, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.imageKey(cardID, faceIndex)),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload card image: %w", err)
	}
	return s.CardImageURL(cardID, faceIndex), nil
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}

func (s *SpacesService) GetRegion() string {
	return s.region
}
