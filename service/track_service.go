package service

import (
	"context"
	"time"

	"stemhub/logger"
	"stemhub/model"
	"stemhub/repository"
	"stemhub/storage"
)

// CreateTrackInput holds the fields accepted when creating a track.
type CreateTrackInput struct {
	User  string
	Name  string
	Genre []model.Genre
}

// UpdateTrackInput holds the optional fields of a track update. Nil fields
// keep their stored value.
type UpdateTrackInput struct {
	Name  *string
	User  *string
	Genre *[]model.Genre
}

// UploadAudioInput carries the path of an already stored audio file.
type UploadAudioInput struct {
	AudioPath string
}

// MergeTrackUpdate overlays the non-nil fields of patch onto existing and
// stamps UpdatedAt. existing is not modified.
func MergeTrackUpdate(existing model.Track, patch UpdateTrackInput, now time.Time) model.Track {
	updated := existing.Clone()
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.User != nil {
		updated.User = *patch.User
	}
	if patch.Genre != nil {
		updated.Genre = append([]model.Genre{}, (*patch.Genre)...)
	}
	updated.UpdatedAt = now
	return updated
}

// TrackService manages tracks.
type TrackService struct {
	store repository.DocumentStore
	files storage.FileStore
	now   Clock
}

// NewTrackService creates a TrackService. files may be nil, in which case
// deletes do not sweep stored audio.
func NewTrackService(store repository.DocumentStore, files storage.FileStore) *TrackService {
	return &TrackService{store: store, files: files, now: defaultClock}
}

// WithClock replaces the time source.
func (s *TrackService) WithClock(now Clock) *TrackService {
	s.now = now
	return s
}

// Create stores a new track with the sentinel audio value.
func (s *TrackService) Create(ctx context.Context, in CreateTrackInput) (model.Track, error) {
	now := s.now()
	track := model.Track{
		User:      in.User,
		Audio:     model.EmptyAudio,
		Name:      in.Name,
		Genre:     append([]model.Genre{}, in.Genre...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.store.Create(ctx, model.TracksCollection, track)
	if err != nil {
		return model.Track{}, err
	}
	track.ID = id

	logger.Info("[Track] 创建成功",
		logger.String("id", id),
		logger.String("user", track.User))
	return track.Clone(), nil
}

// GetAll returns every track in store order.
func (s *TrackService) GetAll(ctx context.Context) ([]model.Track, error) {
	docs, err := s.store.GetAll(ctx, model.TracksCollection)
	if err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(docs))
	for i := range docs {
		track, err := decodeTrack(&docs[i])
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// GetByID returns a copy of the track or ErrNotFound.
func (s *TrackService) GetByID(ctx context.Context, id string) (model.Track, error) {
	doc, err := s.store.GetByID(ctx, model.TracksCollection, id)
	if err != nil {
		return model.Track{}, err
	}
	if doc == nil {
		return model.Track{}, ErrNotFound.New("the track with ID %s not found", id)
	}
	return decodeTrack(doc)
}

// Update merges in into the stored track and writes the result back.
func (s *TrackService) Update(ctx context.Context, id string, in UpdateTrackInput) (model.Track, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Track{}, err
	}

	updated := MergeTrackUpdate(existing, in, s.now())
	if err := s.store.Update(ctx, model.TracksCollection, id, updated); err != nil {
		return model.Track{}, err
	}
	return updated.Clone(), nil
}

// UploadAudio points the track's audio at an already stored file.
func (s *TrackService) UploadAudio(ctx context.Context, id string, in UploadAudioInput) (model.Track, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return model.Track{}, err
	}

	updated := existing.Clone()
	updated.Audio = in.AudioPath
	updated.UpdatedAt = s.now()
	if err := s.store.Update(ctx, model.TracksCollection, id, updated); err != nil {
		return model.Track{}, err
	}

	logger.Info("[Track] 音频上传成功",
		logger.String("id", id),
		logger.String("audio", updated.Audio))
	return updated.Clone(), nil
}

// Delete removes the track's stored audio files and then its document.
// Stems that reference the track are kept.
func (s *TrackService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	sweepFiles(ctx, s.files, storage.KindTrack, id)

	if err := s.store.Delete(ctx, model.TracksCollection, id); err != nil {
		return err
	}
	logger.Info("[Track] 删除成功", logger.String("id", id))
	return nil
}

func decodeTrack(doc *repository.Document) (model.Track, error) {
	var track model.Track
	if err := doc.Decode(&track); err != nil {
		return model.Track{}, err
	}
	track.ID = doc.ID
	if track.Audio == "" {
		track.Audio = model.EmptyAudio
	}
	if track.Genre == nil {
		track.Genre = []model.Genre{}
	}
	return track, nil
}

// sweepFiles removes stored files of one owner. Failures are logged only: a
// leftover file must not keep the record alive.
func sweepFiles(ctx context.Context, files storage.FileStore, kind, id string) {
	if files == nil {
		return
	}
	removed, err := files.DeleteByPrefix(ctx, kind, id)
	if err != nil {
		logger.Warn("[Storage] 清理文件失败",
			logger.String("kind", kind),
			logger.String("id", id),
			logger.Int("removed", removed),
			logger.ErrorField(err))
		return
	}
	if removed > 0 {
		logger.Info("[Storage] 清理文件",
			logger.String("kind", kind),
			logger.String("id", id),
			logger.Int("removed", removed))
	}
}
