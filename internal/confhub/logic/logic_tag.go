package logic

import (
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/repo"
	"github.com/confhub/confhub/pkg/ctx"
)

type TagLogic struct {
	ctx     *ctx.Context
	tagRepo repo.ITagRepository
}

func NewTagLogic(ctx *ctx.Context, tagRepo repo.ITagRepository) *TagLogic {
	return &TagLogic{
		ctx:     ctx,
		tagRepo: tagRepo,
	}
}

func (tl *TagLogic) Create(req model.CreateTagReq) (*model.Tag, error) {
	return tl.tagRepo.CreateTag(tl.ctx.Ctx, req)
}

func (tl *TagLogic) List() ([]model.Tag, error) {
	return tl.tagRepo.ListTags(tl.ctx.Ctx)
}

func (tl *TagLogic) Delete(tagID string) error {
	return tl.tagRepo.DeleteTag(tl.ctx.Ctx, tagID)
}
