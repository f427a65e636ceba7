package storage

import (
	"Foodgram-Backend/internal/utils"
	"context"
	"slices"
)

// StoreBase64Image uploads a data URI image and returns its public URL.
func StoreBase64Image(ctx context.Context, s3 AwsS3, dataURI string, fileName string, folder string) (string, error) {
	image, err := utils.DecodeBase64Image(dataURI)
	if err != nil {
		return "", err
	}
	if !slices.Contains(AllowImage, image.ContentType) {
		return "", ErrFileTypeNotAllowed
	}

	objectKey, err := s3.UploadBytes(ctx, fileName, image.Data, folder, AllowImage...)
	if err != nil {
		return "", err
	}
	return s3.GetPublicLinkKey(objectKey), nil
}

// RemoveImage deletes the object behind a public URL, ignoring foreign links.
func RemoveImage(ctx context.Context, s3 AwsS3, link string) error {
	if link == "" {
		return nil
	}
	objectKey := s3.GetObjectKeyFromLink(link)
	if objectKey == "" {
		return nil
	}
	return s3.DeleteFile(ctx, objectKey)
}
