package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tnqbao/gau-photo-share/config"
	"github.com/tnqbao/gau-photo-share/entity"
)

// MinioClient issues signed capabilities against one storage profile and
// owns every object operation the service performs on it.
type MinioClient struct {
	Client  *minio.Client
	Profile config.StorageProfile
	Logger  *LoggerClient
}

func InitMinioClient(profile config.StorageProfile, logger *LoggerClient) *MinioClient {
	if profile.Endpoint == "" {
		panic(fmt.Sprintf("MinIO endpoint is not configured for profile %s", profile.Name))
	}

	client, err := NewMinioClient(profile, logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client for profile %s: %v", profile.Name, err))
	}

	return client
}

func NewMinioClient(profile config.StorageProfile, logger *LoggerClient) (*MinioClient, error) {
	client, err := minio.New(profile.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(profile.AccessKey, profile.SecretKey, ""),
		Secure: profile.UseSSL,
		Region: profile.Region,
	})
	if err != nil {
		return nil, err
	}

	return &MinioClient{
		Client:  client,
		Profile: profile,
		Logger:  logger,
	}, nil
}

func (m *MinioClient) Name() string {
	return m.Profile.Name
}

// IssueWriteCapability creates the container on first use (publicly
// readable) and signs a PUT for a fresh {uuid}/original.{ext} object.
func (m *MinioClient) IssueWriteCapability(ctx context.Context, container, objectName string, ttl time.Duration) (*entity.SignedCapability, error) {
	if container == "" {
		return nil, entity.NewValidationError("container_name", "must not be empty")
	}

	ext := entity.Extension(objectName)
	if ext == "" {
		return nil, entity.NewValidationError("name", "must carry a file extension")
	}

	if !m.ContainerExists(ctx, container) {
		if err := m.createContainer(ctx, container); err != nil {
			return nil, err
		}
	}

	objectPath := fmt.Sprintf("%s/original.%s", uuid.NewString(), ext)
	signed, err := m.Client.PresignedPutObject(ctx, container, objectPath, ttl)
	if err != nil {
		m.Logger.ErrorWithContextf(ctx, err, "[Storage:%s] Failed to sign write for %s/%s", m.Profile.Name, container, objectPath)
		return nil, fmt.Errorf("failed to sign write capability: %w", err)
	}

	return &entity.SignedCapability{
		URL:       signed.String(),
		Operation: entity.OperationWrite,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// IssueReadCapability never creates anything: a missing container is
// reported as entity.ErrContainerNotFound.
func (m *MinioClient) IssueReadCapability(ctx context.Context, container, objectPath string, ttl time.Duration) (*entity.SignedCapability, error) {
	if !m.ContainerExists(ctx, container) {
		return nil, fmt.Errorf("container %s: %w", container, entity.ErrContainerNotFound)
	}

	signed, err := m.Client.PresignedGetObject(ctx, container, objectPath, ttl, nil)
	if err != nil {
		m.Logger.ErrorWithContextf(ctx, err, "[Storage:%s] Failed to sign read for %s/%s", m.Profile.Name, container, objectPath)
		return nil, fmt.Errorf("failed to sign read capability: %w", err)
	}

	return &entity.SignedCapability{
		URL:       signed.String(),
		Operation: entity.OperationRead,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// ContainerExists reports false when the lookup itself fails.
func (m *MinioClient) ContainerExists(ctx context.Context, container string) bool {
	exists, err := m.Client.BucketExists(ctx, container)
	if err != nil {
		m.Logger.ErrorWithContextf(ctx, err, "[Storage:%s] Failed to check container %s", m.Profile.Name, container)
		return false
	}
	return exists
}

func (m *MinioClient) createContainer(ctx context.Context, container string) error {
	err := m.Client.MakeBucket(ctx, container, minio.MakeBucketOptions{Region: m.Profile.Region})
	if err != nil {
		// Another request may have created it in between.
		code := minio.ToErrorResponse(err).Code
		if code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
			m.Logger.ErrorWithContextf(ctx, err, "[Storage:%s] Failed to create container %s", m.Profile.Name, container)
			return fmt.Errorf("failed to create container: %w", err)
		}
	}

	if err := m.Client.SetBucketPolicy(ctx, container, publicReadPolicy(container)); err != nil {
		m.Logger.ErrorWithContextf(ctx, err, "[Storage:%s] Failed to make container %s public", m.Profile.Name, container)
		return fmt.Errorf("failed to set container policy: %w", err)
	}

	m.Logger.InfoWithContextf(ctx, "[Storage:%s] Created public container %s", m.Profile.Name, container)
	return nil
}

// publicReadPolicy grants anonymous GetObject only. Listing stays closed so
// an object name is the only thing that grants access to it.
func publicReadPolicy(container string) string {
	return fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, container)
}

// DirectURL is the unsigned public address of an object.
func (m *MinioClient) DirectURL(container, objectPath string) string {
	return fmt.Sprintf("%s/%s/%s", m.Profile.PublicURL, container, objectPath)
}

// DeriveVariant reads folder/original, scales it to the resolution and
// stores it next to the original as folder/{resolution}.{ext}, replacing
// any earlier variant.
func (m *MinioClient) DeriveVariant(ctx context.Context, container, folder, objectName string, resolution entity.Resolution) error {
	originalPath := path.Join(folder, objectName)

	object, err := m.Client.GetObject(ctx, container, originalPath, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to open original %s: %w", originalPath, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return fmt.Errorf("failed to read original %s: %w", originalPath, err)
	}

	resized, contentType, err := ResizeImage(data, entity.Extension(objectName), resolution.Dimension())
	if err != nil {
		return err
	}

	variantPath := path.Join(folder, entity.VariantObjectName(objectName, resolution))
	_, err = m.Client.PutObject(ctx, container, variantPath, bytes.NewReader(resized), int64(len(resized)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store variant %s: %w", variantPath, err)
	}

	m.Logger.InfoWithContextf(ctx, "[Storage:%s] Stored variant %s/%s", m.Profile.Name, container, variantPath)
	return nil
}

// DeleteObjects removes the given paths. Paths that do not exist count as
// removed.
func (m *MinioClient) DeleteObjects(ctx context.Context, container string, objectPaths ...string) entity.Outcome {
	outcome := entity.Outcome{Target: container}
	if len(objectPaths) == 0 {
		return outcome
	}

	objectsCh := make(chan minio.ObjectInfo, len(objectPaths))
	for _, p := range objectPaths {
		objectsCh <- minio.ObjectInfo{Key: p}
	}
	close(objectsCh)

	var errs []error
	for removeErr := range m.Client.RemoveObjects(ctx, container, objectsCh, minio.RemoveObjectsOptions{}) {
		if minio.ToErrorResponse(removeErr.Err).Code == "NoSuchBucket" {
			continue
		}
		errs = append(errs, fmt.Errorf("remove %s: %w", removeErr.ObjectName, removeErr.Err))
	}

	outcome.Err = errors.Join(errs...)
	if outcome.Err != nil {
		m.Logger.ErrorWithContextf(ctx, outcome.Err, "[Storage:%s] Failed to delete objects in %s", m.Profile.Name, container)
	}
	return outcome
}

// DeleteContainer empties and removes a container. The caller decides what a
// failed Outcome means.
func (m *MinioClient) DeleteContainer(ctx context.Context, container string) entity.Outcome {
	outcome := entity.Outcome{Target: container}

	if err := m.removeAllObjects(ctx, container); err != nil {
		outcome.Err = err
	} else if err := m.Client.RemoveBucket(ctx, container); err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchBucket" {
			outcome.Err = fmt.Errorf("failed to delete container: %w", err)
		}
	}

	if outcome.Err != nil {
		m.Logger.ErrorWithContextf(ctx, outcome.Err, "[Storage:%s] Failed to delete container %s", m.Profile.Name, container)
	}
	return outcome
}

func (m *MinioClient) removeAllObjects(ctx context.Context, container string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for object := range m.Client.ListObjects(ctx, container, minio.ListObjectsOptions{Recursive: true}) {
			if object.Err != nil {
				continue
			}
			objectsCh <- object
		}
	}()

	var errs []error
	for removeErr := range m.Client.RemoveObjects(ctx, container, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove %s: %w", removeErr.ObjectName, removeErr.Err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to empty container: %w", errors.Join(errs...))
	}
	return nil
}
