package logic

import (
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/repo"
	"github.com/confhub/confhub/pkg/ctx"
)

type ParameterLogic struct {
	ctx           *ctx.Context
	parameterRepo repo.IParameterRepository
}

func NewParameterLogic(ctx *ctx.Context, parameterRepo repo.IParameterRepository) *ParameterLogic {
	return &ParameterLogic{
		ctx:           ctx,
		parameterRepo: parameterRepo,
	}
}

func (pl *ParameterLogic) Create(req model.CreateParameterReq) (*model.Parameter, error) {
	return pl.parameterRepo.CreateParameter(pl.ctx.Ctx, req)
}

func (pl *ParameterLogic) Get(parameterID string) (*model.Parameter, error) {
	return pl.parameterRepo.GetParameter(pl.ctx.Ctx, parameterID)
}

func (pl *ParameterLogic) List() ([]model.Parameter, error) {
	return pl.parameterRepo.ListParameters(pl.ctx.Ctx)
}

func (pl *ParameterLogic) Update(parameterID string, req model.UpdateParameterReq) (*model.Parameter, error) {
	return pl.parameterRepo.UpdateParameter(pl.ctx.Ctx, parameterID, req)
}

func (pl *ParameterLogic) Delete(parameterID string) error {
	return pl.parameterRepo.DeleteParameter(pl.ctx.Ctx, parameterID)
}

func (pl *ParameterLogic) Search(filter model.ParameterFilter) ([]model.Parameter, error) {
	return pl.parameterRepo.Search(pl.ctx.Ctx, filter)
}

func (pl *ParameterLogic) Bulk(req model.BulkParameterReq) (*model.BulkResult, error) {
	return pl.parameterRepo.Bulk(pl.ctx.Ctx, req)
}

func (pl *ParameterLogic) Unassigned() ([]model.Parameter, error) {
	return pl.parameterRepo.GetUnassignedParameters(pl.ctx.Ctx)
}
