package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"jobboard-backend/internal/extract"
	"jobboard-backend/internal/shared/storage/object"
	"jobboard-backend/internal/shared/telemetry"
)

const (
	DefaultMaxBytes = 5 << 20
	presignTTL      = 15 * time.Minute
)

var validate = validator.New()

// ProfileStore records which resume is a job seeker's profile resume.
type ProfileStore interface {
	SetProfileResume(ctx context.Context, jobSeekerID, resumeID int64) error
}

// UploadInput is a resume file plus the structured data parsed from it.
type UploadInput struct {
	FileName  string
	Body      io.Reader
	Extracted *ExtractedData
}

type Service struct {
	Repo     Repo
	Store    object.Store
	Profiles ProfileStore
	MaxBytes int64
}

// CreateFromUpload stores the file, extracts its raw text best-effort and records the resume.
func (s *Service) CreateFromUpload(ctx context.Context, jobSeekerID int64, in UploadInput) (Resume, error) {
	if jobSeekerID <= 0 || in.Body == nil || in.Extracted == nil || strings.TrimSpace(in.FileName) == "" {
		return Resume{}, ErrValidation
	}
	if err := validate.Struct(in.Extracted); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	obj, err := s.Store.Put(ctx, ownerKey(jobSeekerID), in.FileName, io.LimitReader(in.Body, maxBytes+1))
	if err != nil {
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}
	if obj.Size > maxBytes {
		s.discard(ctx, obj.Key)
		return Resume{}, ErrTooLarge
	}
	mimeType := extract.NormalizeMimeType(obj.MimeType, in.FileName, nil)
	if mimeType != extract.MimePDF && mimeType != extract.MimeDOCX {
		s.discard(ctx, obj.Key)
		return Resume{}, fmt.Errorf("%w: %s", ErrUnsupportedType, obj.MimeType)
	}

	rawText, err := extract.FromObject(ctx, s.Store, obj.Key, mimeType, in.FileName)
	if err != nil {
		telemetry.Warn("resume.extract.failed", map[string]any{
			"job_seeker_id": jobSeekerID,
			"storage_key":   obj.Key,
			"error":         err.Error(),
			"request_id":    telemetry.RequestIDFromContext(ctx),
		})
	}

	created, err := s.Repo.Create(ctx, Resume{
		JobSeekerID: jobSeekerID,
		FileName:    in.FileName,
		MimeType:    mimeType,
		SizeBytes:   obj.Size,
		SHA256:      obj.SHA256,
		StorageKey:  obj.Key,
		Extracted:   *in.Extracted,
		RawText:     rawText,
	})
	if err != nil {
		s.discard(ctx, obj.Key)
		return Resume{}, err
	}
	return created, nil
}

// CreateFromStoredObject records a resume the client uploaded directly through a
// presigned URL. The key must sit under the job seeker's own prefix.
func (s *Service) CreateFromStoredObject(ctx context.Context, jobSeekerID int64, key, fileName string, extracted *ExtractedData) (Resume, error) {
	key = strings.TrimSpace(key)
	fileName = strings.TrimSpace(fileName)
	if jobSeekerID <= 0 || key == "" || fileName == "" || extracted == nil {
		return Resume{}, ErrValidation
	}
	if err := validate.Struct(extracted); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !object.OwnsKey(ownerKey(jobSeekerID), key) {
		return Resume{}, ErrForbidden
	}

	body, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, fmt.Errorf("open stored resume: %w", err)
	}
	defer body.Close()

	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	sniffed, replay, err := object.Sniff(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return Resume{}, fmt.Errorf("read stored resume: %w", err)
	}
	meter := object.NewMeter(replay)
	if _, err := io.Copy(io.Discard, meter); err != nil {
		return Resume{}, fmt.Errorf("read stored resume: %w", err)
	}
	if meter.Size() > maxBytes {
		s.discard(ctx, key)
		return Resume{}, ErrTooLarge
	}
	mimeType := extract.NormalizeMimeType(sniffed, fileName, nil)
	if mimeType != extract.MimePDF && mimeType != extract.MimeDOCX {
		s.discard(ctx, key)
		return Resume{}, fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed)
	}

	rawText, err := extract.FromObject(ctx, s.Store, key, mimeType, fileName)
	if err != nil {
		telemetry.Warn("resume.extract.failed", map[string]any{
			"job_seeker_id": jobSeekerID,
			"storage_key":   key,
			"error":         err.Error(),
			"request_id":    telemetry.RequestIDFromContext(ctx),
		})
	}

	return s.Repo.Create(ctx, Resume{
		JobSeekerID: jobSeekerID,
		FileName:    fileName,
		MimeType:    mimeType,
		SizeBytes:   meter.Size(),
		SHA256:      meter.Sum(),
		StorageKey:  key,
		Extracted:   *extracted,
		RawText:     rawText,
	})
}

// Owner returns the job seeker that owns the resume.
func (s *Service) Owner(ctx context.Context, resumeID int64) (int64, error) {
	r, err := s.Repo.Get(ctx, resumeID)
	if err != nil {
		return 0, err
	}
	return r.JobSeekerID, nil
}

// GetOwned returns a resume only if jobSeekerID owns it; other owners look like a missing row.
func (s *Service) GetOwned(ctx context.Context, jobSeekerID, resumeID int64) (Resume, error) {
	r, err := s.Repo.Get(ctx, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if r.JobSeekerID != jobSeekerID {
		return Resume{}, ErrNotFound
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, jobSeekerID int64) ([]Resume, error) {
	return s.Repo.ListByJobSeeker(ctx, jobSeekerID)
}

// SetProfile marks an owned resume as the job seeker's default.
func (s *Service) SetProfile(ctx context.Context, jobSeekerID, resumeID int64) error {
	r, err := s.Repo.Get(ctx, resumeID)
	if err != nil {
		return err
	}
	if r.JobSeekerID != jobSeekerID {
		return ErrForbidden
	}
	if s.Profiles == nil {
		return errors.New("profile store not configured")
	}
	return s.Profiles.SetProfileResume(ctx, jobSeekerID, resumeID)
}

// DownloadURL returns a presigned link to an owned resume.
func (s *Service) DownloadURL(ctx context.Context, jobSeekerID, resumeID int64) (string, error) {
	presigner, ok := s.Store.(object.Presigner)
	if !ok {
		return "", ErrPresignDisabled
	}
	r, err := s.GetOwned(ctx, jobSeekerID, resumeID)
	if err != nil {
		return "", err
	}
	return presigner.PresignGet(ctx, r.StorageKey, presignTTL)
}

// PresignedUpload is a direct-to-storage upload slot.
type PresignedUpload struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// PresignUpload reserves a storage key for a direct client upload.
func (s *Service) PresignUpload(ctx context.Context, jobSeekerID int64, fileName, contentType string, sizeBytes int64) (PresignedUpload, error) {
	presigner, ok := s.Store.(object.Presigner)
	if !ok {
		return PresignedUpload{}, ErrPresignDisabled
	}
	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if sizeBytes <= 0 || sizeBytes > maxBytes {
		return PresignedUpload{}, ErrTooLarge
	}
	if contentType != extract.MimePDF && contentType != extract.MimeDOCX {
		return PresignedUpload{}, ErrUnsupportedType
	}
	key, err := object.BuildKey(ownerKey(jobSeekerID), fileName)
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	url, err := presigner.PresignPut(ctx, key, contentType, presignTTL)
	if err != nil {
		return PresignedUpload{}, err
	}
	return PresignedUpload{UploadURL: url, Key: key, ExpiresInSeconds: int64(presignTTL / time.Second)}, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.discard.failed", map[string]any{"storage_key": key, "error": err.Error()})
	}
}

func ownerKey(jobSeekerID int64) string {
	return "job_seeker:" + strconv.FormatInt(jobSeekerID, 10)
}
