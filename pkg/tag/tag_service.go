package tag

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	TagService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTagByID(ctx context.Context, id string) (domain.TagResponse, error)
		CreateTag(ctx context.Context, req domain.TagRequest) (domain.TagResponse, error)
		UpdateTag(ctx context.Context, id string, req domain.TagRequest) (domain.TagResponse, error)
		DeleteTag(ctx context.Context, id string) error
	}

	tagService struct {
		tagRepository TagRepository
	}
)

func NewTagService(tagRepository TagRepository) TagService {
	return &tagService{tagRepository: tagRepository}
}

func ToTagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func (s *tagService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.tagRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		response = append(response, ToTagResponse(tag))
	}
	return response, nil
}

func (s *tagService) getTag(ctx context.Context, id string) (*entities.Tag, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTagNotFound
	}
	tag, err := s.tagRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

func (s *tagService) GetTagByID(ctx context.Context, id string) (domain.TagResponse, error) {
	tag, err := s.getTag(ctx, id)
	if err != nil {
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *tagService) CreateTag(ctx context.Context, req domain.TagRequest) (domain.TagResponse, error) {
	tag := &entities.Tag{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(req.Name),
		Color: strings.ToUpper(req.Color),
		Slug:  req.Slug,
	}

	if err := s.tagRepository.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *tagService) UpdateTag(ctx context.Context, id string, req domain.TagRequest) (domain.TagResponse, error) {
	tag, err := s.getTag(ctx, id)
	if err != nil {
		return domain.TagResponse{}, err
	}

	tag.Name = strings.TrimSpace(req.Name)
	tag.Color = strings.ToUpper(req.Color)
	tag.Slug = req.Slug

	if err := s.tagRepository.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return ToTagResponse(tag), nil
}

func (s *tagService) DeleteTag(ctx context.Context, id string) error {
	if _, err := s.getTag(ctx, id); err != nil {
		return err
	}
	return s.tagRepository.DeleteTag(ctx, id)
}
