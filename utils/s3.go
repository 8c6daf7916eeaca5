package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MaxImageBytes bounds decoded meal photos.
const MaxImageBytes = 5 << 20

var ErrInvalidDataURI = errors.New("invalid base64 image")

// DecodedImage is the payload of a "data:<mime>;base64,<data>" URI.
type DecodedImage struct {
	ContentType string
	Ext         string
	Data        []byte
}

func DecodeDataURI(dataURI string) (*DecodedImage, error) {
	meta, data, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrInvalidDataURI, contentType)
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(raw) == 0 {
		return nil, ErrInvalidDataURI
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image too large (%d bytes)", ErrInvalidDataURI, len(raw))
	}
	return &DecodedImage{ContentType: contentType, Ext: ext, Data: raw}, nil
}

type ImageUploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewImageUploader(cfg aws.Config, bucket, publicURL string) *ImageUploader {
	return &ImageUploader{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// UploadMealPhoto stores a data URI under meal-photos/<userID>/ and returns its
// public URL via CloudFront.
func (u *ImageUploader) UploadMealPhoto(ctx context.Context, userID, dataURI string) (string, error) {
	img, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("meal-photos/%s/%d%s", userID, time.Now().UnixNano(), img.Ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.publicURL, key), nil
}
