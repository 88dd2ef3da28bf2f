package logic

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/confhub/confhub/internal/confhub/export"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/internal/confhub/repo"
	"github.com/confhub/confhub/pkg/ctx"
)

type APIKeyLogic struct {
	ctx           *ctx.Context
	apiKeyRepo    repo.IAPIKeyRepository
	solutionRepo  repo.ISolutionRepository
	parameterRepo repo.IParameterRepository
}

func NewAPIKeyLogic(ctx *ctx.Context, apiKeyRepo repo.IAPIKeyRepository, solutionRepo repo.ISolutionRepository, parameterRepo repo.IParameterRepository) *APIKeyLogic {
	return &APIKeyLogic{
		ctx:           ctx,
		apiKeyRepo:    apiKeyRepo,
		solutionRepo:  solutionRepo,
		parameterRepo: parameterRepo,
	}
}

// generateToken builds an opaque solution-scoped bearer token.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "sol_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create mints a key for a solution. The full token is returned exactly
// once, listings only ever expose the masked form.
func (kl *APIKeyLogic) Create(solutionID string, req model.CreateAPIKeyReq) (*model.CreatedAPIKey, error) {
	if _, err := kl.solutionRepo.GetSolution(kl.ctx.Ctx, solutionID); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresDays != nil && *req.ExpiresDays > 0 {
		t := time.Now().AddDate(0, 0, *req.ExpiresDays)
		expiresAt = &t
	}

	key, err := kl.apiKeyRepo.CreateAPIKey(kl.ctx.Ctx, solutionID, req.Name, token, expiresAt)
	if err != nil {
		return nil, err
	}

	return &model.CreatedAPIKey{APIKey: *key, Token: token}, nil
}

func (kl *APIKeyLogic) List(solutionID string) ([]model.MaskedAPIKey, error) {
	if _, err := kl.solutionRepo.GetSolution(kl.ctx.Ctx, solutionID); err != nil {
		return nil, err
	}

	keys, err := kl.apiKeyRepo.ListAPIKeys(kl.ctx.Ctx, solutionID)
	if err != nil {
		return nil, err
	}

	masked := make([]model.MaskedAPIKey, 0, len(keys))
	for i := range keys {
		masked = append(masked, keys[i].Masked())
	}
	return masked, nil
}

func (kl *APIKeyLogic) Delete(keyID string) error {
	return kl.apiKeyRepo.DeleteAPIKey(kl.ctx.Ctx, keyID)
}

func (kl *APIKeyLogic) Toggle(keyID string, active bool) error {
	return kl.apiKeyRepo.ToggleAPIKey(kl.ctx.Ctx, keyID, active)
}

// ExportByToken serves the API-key retrieval path: validate the token,
// record usage, and render the solution's parameters as a flat plaintext
// map in the requested format.
func (kl *APIKeyLogic) ExportByToken(token, format string) (*export.Artifact, error) {
	key, err := kl.apiKeyRepo.ValidateToken(kl.ctx.Ctx, token)
	if err != nil {
		return nil, err
	}
	kl.apiKeyRepo.TouchLastUsed(kl.ctx.Ctx, key.ID)

	sol, err := kl.solutionRepo.GetSolution(kl.ctx.Ctx, key.SolutionID)
	if err != nil {
		return nil, err
	}
	params, err := kl.parameterRepo.ParametersForSolution(kl.ctx.Ctx, key.SolutionID)
	if err != nil {
		return nil, err
	}

	flat := export.BuildFlatMap(params)
	art, err := export.RenderFlat(flat, sol.Name, export.ParseFormat(format), time.Now())
	if err != nil {
		return nil, err
	}
	return &art, nil
}
