package service

import (
	"context"
	"time"

	"stemhub/logger"
	"stemhub/model"
	"stemhub/repository"
	"stemhub/storage"
)

// CreateStemInput holds the fields accepted when creating a stem.
type CreateStemInput struct {
	User    string
	Name    string
	TrackID string
}

// UpdateStemInput holds the optional fields of a stem update.
type UpdateStemInput struct {
	Name    *string
	User    *string
	TrackID *string
}

// MergeStemUpdate overlays the non-nil fields of patch onto existing and
// stamps UpdatedAt.
func MergeStemUpdate(existing model.Stem, patch UpdateStemInput, now time.Time) model.Stem {
	updated := existing
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.User != nil {
		updated.User = *patch.User
	}
	if patch.TrackID != nil {
		updated.TrackID = *patch.TrackID
	}
	updated.UpdatedAt = now
	return updated
}

// StemService manages stems. The parent track must exist when a stem is
// created or moved to another track.
type StemService struct {
	store  repository.DocumentStore
	files  storage.FileStore
	tracks *TrackService
	now    Clock
}

// NewStemService creates a StemService.
func NewStemService(store repository.DocumentStore, files storage.FileStore, tracks *TrackService) *StemService {
	return &StemService{store: store, files: files, tracks: tracks, now: defaultClock}
}

// WithClock replaces the time source.
func (s *StemService) WithClock(now Clock) *StemService {
	s.now = now
	return s
}

func (s *StemService) checkTrack(ctx context.Context, trackID string) error {
	if s.tracks == nil {
		return nil
	}
	_, err := s.tracks.GetByID(ctx, trackID)
	return err
}

// Create stores a new stem with the sentinel audio value.
func (s *StemService) Create(ctx context.Context, in CreateStemInput) (model.Stem, error) {
	if err := s.checkTrack(ctx, in.TrackID); err != nil {
		return model.Stem{}, err
	}

	now := s.now()
	stem := model.Stem{
		Audio:     model.EmptyAudio,
		User:      in.User,
		Name:      in.Name,
		TrackID:   in.TrackID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.Create(ctx, model.StemsCollection, stem)
	if err != nil {
		return model.Stem{}, err
	}
	stem.ID = id

	logger.Info("[Stem] 创建成功",
		logger.String("id", id),
		logger.String("trackId", stem.TrackID))
	return stem, nil
}

// GetAll returns every stem in store order.
func (s *StemService) GetAll(ctx context.Context) ([]model.Stem, error) {
	docs, err := s.store.GetAll(ctx, model.StemsCollection)
	if err != nil {
		return nil, err
	}

	stems := make([]model.Stem, 0, len(docs))
	for i := range docs {
		stem, err := decodeStem(&docs[i])
		if err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, nil
}

// GetByID returns the stem or ErrNotFound.
func (s *StemService) GetByID(ctx context.Context, id string) (model.Stem, error) {
	doc, err := s.store.GetByID(ctx, model.StemsCollection, id)
	if err != nil {
		return model.Stem{}, err
	}
	if doc == nil {
		return model.Stem{}, ErrNotFound.New("stem with ID %s not found", id)
	}
	return decodeStem(doc)
}

// Update merges in into the stored stem and writes the result back.
func (s *StemService) Update(ctx context.Context, id string, in UpdateStemInput) (model.Stem, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Stem{}, err
	}
	if in.TrackID != nil && *in.TrackID != existing.TrackID {
		if err := s.checkTrack(ctx, *in.TrackID); err != nil {
			return model.Stem{}, err
		}
	}

	updated := MergeStemUpdate(existing, in, s.now())
	if err := s.store.Update(ctx, model.StemsCollection, id, updated); err != nil {
		return model.Stem{}, err
	}
	return updated, nil
}

// UploadAudio points the stem's audio at an already stored file.
func (s *StemService) UploadAudio(ctx context.Context, id string, in UploadAudioInput) (model.Stem, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Stem{}, err
	}

	updated := existing
	updated.Audio = in.AudioPath
	updated.UpdatedAt = s.now()
	if err := s.store.Update(ctx, model.StemsCollection, id, updated); err != nil {
		return model.Stem{}, err
	}

	logger.Info("[Stem] 音频上传成功",
		logger.String("id", id),
		logger.String("audio", updated.Audio))
	return updated, nil
}

// Delete removes the stem's stored audio files and then its document.
func (s *StemService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	sweepFiles(ctx, s.files, storage.KindStem, id)

	if err := s.store.Delete(ctx, model.StemsCollection, id); err != nil {
		return err
	}
	logger.Info("[Stem] 删除成功", logger.String("id", id))
	return nil
}

func decodeStem(doc *repository.Document) (model.Stem, error) {
	var stem model.Stem
	if err := doc.Decode(&stem); err != nil {
		return model.Stem{}, err
	}
	stem.ID = doc.ID
	if stem.Audio == "" {
		stem.Audio = model.EmptyAudio
	}
	return stem, nil
}
