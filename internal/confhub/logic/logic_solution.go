package logic

import (
	"time"

	"github.com/confhub/confhub/internal/confhub/export"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/repo"
	"github.com/confhub/confhub/pkg/ctx"
)

type SolutionLogic struct {
	ctx           *ctx.Context
	solutionRepo  repo.ISolutionRepository
	parameterRepo repo.IParameterRepository
}

func NewSolutionLogic(ctx *ctx.Context, solutionRepo repo.ISolutionRepository, parameterRepo repo.IParameterRepository) *SolutionLogic {
	return &SolutionLogic{
		ctx:           ctx,
		solutionRepo:  solutionRepo,
		parameterRepo: parameterRepo,
	}
}

func (sl *SolutionLogic) Create(req model.CreateSolutionReq) (*model.Solution, error) {
	return sl.solutionRepo.CreateSolution(sl.ctx.Ctx, req)
}

func (sl *SolutionLogic) Get(solutionID string) (*model.Solution, error) {
	return sl.solutionRepo.GetSolution(sl.ctx.Ctx, solutionID)
}

func (sl *SolutionLogic) List() ([]model.Solution, error) {
	return sl.solutionRepo.ListSolutions(sl.ctx.Ctx)
}

func (sl *SolutionLogic) Update(solutionID string, req model.UpdateSolutionReq) (*model.Solution, error) {
	return sl.solutionRepo.UpdateSolution(sl.ctx.Ctx, solutionID, req)
}

func (sl *SolutionLogic) Delete(solutionID string) error {
	return sl.solutionRepo.DeleteSolution(sl.ctx.Ctx, solutionID)
}

// GetWithParameters returns a solution and its parameters ordered by key.
func (sl *SolutionLogic) GetWithParameters(solutionID string) (*model.SolutionDetail, error) {
	sol, err := sl.solutionRepo.GetSolution(sl.ctx.Ctx, solutionID)
	if err != nil {
		return nil, err
	}
	params, err := sl.parameterRepo.ParametersForSolution(sl.ctx.Ctx, solutionID)
	if err != nil {
		return nil, err
	}
	return &model.SolutionDetail{Solution: *sol, Parameters: params}, nil
}

func (sl *SolutionLogic) AddParameter(solutionID, parameterID string) error {
	if _, err := sl.solutionRepo.GetSolution(sl.ctx.Ctx, solutionID); err != nil {
		return err
	}
	if _, err := sl.parameterRepo.GetParameter(sl.ctx.Ctx, parameterID); err != nil {
		return err
	}
	return sl.solutionRepo.AddParameter(sl.ctx.Ctx, solutionID, parameterID)
}

func (sl *SolutionLogic) RemoveParameter(solutionID, parameterID string) error {
	return sl.solutionRepo.RemoveParameter(sl.ctx.Ctx, solutionID, parameterID)
}

// Export renders the operator view with secret values redacted.
func (sl *SolutionLogic) Export(solutionID, format string) (*export.Artifact, error) {
	sol, err := sl.solutionRepo.GetSolution(sl.ctx.Ctx, solutionID)
	if err != nil {
		return nil, err
	}
	params, err := sl.parameterRepo.ParametersForSolution(sl.ctx.Ctx, solutionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := export.BuildDocument(*sol, params, now)
	art, err := export.Render(doc, export.ParseFormat(format), now)
	if err != nil {
		return nil, err
	}
	return &art, nil
}
