package service

import (
	"context"

	"stemhub/logger"
	"stemhub/model"
	"stemhub/repository"
)

// CreateCommentInput holds the fields of a new comment.
type CreateCommentInput struct {
	User    string
	Comment string
}

// CommentService manages comments. Comments cannot be updated.
type CommentService struct {
	store repository.DocumentStore
	now   Clock
}

// NewCommentService creates a CommentService.
func NewCommentService(store repository.DocumentStore) *CommentService {
	return &CommentService{store: store, now: defaultClock}
}

// WithClock replaces the time source.
func (s *CommentService) WithClock(now Clock) *CommentService {
	s.now = now
	return s
}

// Create stores a new comment.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (model.Comment, error) {
	comment := model.Comment{
		User:      in.User,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}

	id, err := s.store.Create(ctx, model.CommentsCollection, comment)
	if err != nil {
		return model.Comment{}, err
	}
	comment.ID = id

	logger.Info("[Comment] 创建成功",
		logger.String("id", id),
		logger.String("user", comment.User))
	return comment, nil
}

// GetAll returns every comment in store order.
func (s *CommentService) GetAll(ctx context.Context) ([]model.Comment, error) {
	docs, err := s.store.GetAll(ctx, model.CommentsCollection)
	if err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0, len(docs))
	for i := range docs {
		var comment model.Comment
		if err := docs[i].Decode(&comment); err != nil {
			return nil, err
		}
		comment.ID = docs[i].ID
		comments = append(comments, comment)
	}
	return comments, nil
}

// GetByID returns the comment or ErrNotFound.
func (s *CommentService) GetByID(ctx context.Context, id string) (model.Comment, error) {
	doc, err := s.store.GetByID(ctx, model.CommentsCollection, id)
	if err != nil {
		return model.Comment{}, err
	}
	if doc == nil {
		return model.Comment{}, ErrNotFound.New("comment with ID %s not found", id)
	}

	var comment model.Comment
	if err := doc.Decode(&comment); err != nil {
		return model.Comment{}, err
	}
	comment.ID = doc.ID
	return comment, nil
}

// Delete removes the comment.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, model.CommentsCollection, id); err != nil {
		return err
	}
	logger.Info("[Comment] 删除成功", logger.String("id", id))
	return nil
}
