package logic

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/pkg/ctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolutionRepo struct {
	solutions map[string]*model.Solution
}

func (f *fakeSolutionRepo) GetSolution(_ context.Context, id string) (*model.Solution, error) {
	if s, ok := f.solutions[id]; ok {
		return s, nil
	}
	return nil, errs.NotFound("solution %q not found", id)
}
func (f *fakeSolutionRepo) CreateSolution(context.Context, model.CreateSolutionReq) (*model.Solution, error) {
	return nil, nil
}
func (f *fakeSolutionRepo) ListSolutions(context.Context) ([]model.Solution, error) { return nil, nil }
func (f *fakeSolutionRepo) UpdateSolution(context.Context, string, model.UpdateSolutionReq) (*model.Solution, error) {
	return nil, nil
}
func (f *fakeSolutionRepo) DeleteSolution(context.Context, string) error        { return nil }
func (f *fakeSolutionRepo) AddParameter(context.Context, string, string) error  { return nil }
func (f *fakeSolutionRepo) RemoveParameter(context.Context, string, string) error { return nil }

type fakeParameterRepo struct {
	bySolution map[string][]model.Parameter
}

func (f *fakeParameterRepo) ParametersForSolution(_ context.Context, solutionID string) ([]model.Parameter, error) {
	return f.bySolution[solutionID], nil
}
func (f *fakeParameterRepo) CreateParameter(context.Context, model.CreateParameterReq) (*model.Parameter, error) {
	return nil, nil
}
func (f *fakeParameterRepo) GetParameter(context.Context, string) (*model.Parameter, error) {
	return nil, nil
}
func (f *fakeParameterRepo) ListParameters(context.Context) ([]model.Parameter, error) {
	return nil, nil
}
func (f *fakeParameterRepo) UpdateParameter(context.Context, string, model.UpdateParameterReq) (*model.Parameter, error) {
	return nil, nil
}
func (f *fakeParameterRepo) DeleteParameter(context.Context, string) error { return nil }
func (f *fakeParameterRepo) Search(context.Context, model.ParameterFilter) ([]model.Parameter, error) {
	return nil, nil
}
func (f *fakeParameterRepo) Bulk(context.Context, model.BulkParameterReq) (*model.BulkResult, error) {
	return nil, nil
}
func (f *fakeParameterRepo) GetUnassignedParameters(context.Context) ([]model.Parameter, error) {
	return nil, nil
}

type fakeAPIKeyRepo struct {
	created   *model.APIKey
	validated *model.APIKey
	touched   []string
}

func (f *fakeAPIKeyRepo) CreateAPIKey(_ context.Context, solutionID, name, token string, expiresAt *time.Time) (*model.APIKey, error) {
	f.created = &model.APIKey{ID: "k1", SolutionID: solutionID, Name: name, Token: token, IsActive: true, ExpiresAt: expiresAt}
	return f.created, nil
}
func (f *fakeAPIKeyRepo) ListAPIKeys(context.Context, string) ([]model.APIKey, error) {
	if f.created == nil {
		return nil, nil
	}
	return []model.APIKey{*f.created}, nil
}
func (f *fakeAPIKeyRepo) DeleteAPIKey(context.Context, string) error         { return nil }
func (f *fakeAPIKeyRepo) ToggleAPIKey(context.Context, string, bool) error   { return nil }
func (f *fakeAPIKeyRepo) ValidateToken(_ context.Context, token string) (*model.APIKey, error) {
	if f.validated != nil && f.validated.Token == token {
		return f.validated, nil
	}
	return nil, errs.Unauthorized("invalid or expired API key")
}
func (f *fakeAPIKeyRepo) TouchLastUsed(_ context.Context, keyID string) {
	f.touched = append(f.touched, keyID)
}

func testCtx() *ctx.Context {
	return &ctx.Context{Ctx: context.Background()}
}

func newKeyLogic(keys *fakeAPIKeyRepo, sols *fakeSolutionRepo, params *fakeParameterRepo) *APIKeyLogic {
	return NewAPIKeyLogic(testCtx(), keys, sols, params)
}

func TestCreateAPIKeyTokenShape(t *testing.T) {
	keys := &fakeAPIKeyRepo{}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{"s1": {ID: "s1", Name: "My App"}}}

	created, err := newKeyLogic(keys, sols, &fakeParameterRepo{}).Create("s1", model.CreateAPIKeyReq{Name: "ci"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.Token, "sol_"))
	// 32 random bytes in unpadded base64url.
	assert.Len(t, created.Token, len("sol_")+43)
	assert.Nil(t, created.ExpiresAt)
}

func TestCreateAPIKeyTokensAreUnique(t *testing.T) {
	keys := &fakeAPIKeyRepo{}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{"s1": {ID: "s1"}}}
	kl := newKeyLogic(keys, sols, &fakeParameterRepo{})

	first, err := kl.Create("s1", model.CreateAPIKeyReq{Name: "a"})
	require.NoError(t, err)
	second, err := kl.Create("s1", model.CreateAPIKeyReq{Name: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestCreateAPIKeyExpiresDays(t *testing.T) {
	keys := &fakeAPIKeyRepo{}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{"s1": {ID: "s1"}}}

	days := 7
	created, err := newKeyLogic(keys, sols, &fakeParameterRepo{}).Create("s1", model.CreateAPIKeyReq{Name: "ci", ExpiresDays: &days})
	require.NoError(t, err)

	require.NotNil(t, created.ExpiresAt)
	expected := time.Now().AddDate(0, 0, 7)
	assert.WithinDuration(t, expected, *created.ExpiresAt, time.Minute)
}

func TestCreateAPIKeyUnknownSolution(t *testing.T) {
	_, err := newKeyLogic(&fakeAPIKeyRepo{}, &fakeSolutionRepo{solutions: map[string]*model.Solution{}}, &fakeParameterRepo{}).
		Create("ghost", model.CreateAPIKeyReq{Name: "ci"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestListMasksTokens(t *testing.T) {
	keys := &fakeAPIKeyRepo{}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{"s1": {ID: "s1"}}}
	kl := newKeyLogic(keys, sols, &fakeParameterRepo{})

	created, err := kl.Create("s1", model.CreateAPIKeyReq{Name: "ci"})
	require.NoError(t, err)

	listed, err := kl.List("s1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assert.Equal(t, created.Token[len(created.Token)-4:], listed[0].TokenSuffix)
	assert.Len(t, listed[0].TokenSuffix, 4)
}

func TestExportByTokenPlaintextAndTouch(t *testing.T) {
	keys := &fakeAPIKeyRepo{
		validated: &model.APIKey{ID: "k1", SolutionID: "s1", Token: "sol_valid", IsActive: true},
	}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{"s1": {ID: "s1", Name: "My App"}}}
	params := &fakeParameterRepo{bySolution: map[string][]model.Parameter{
		"s1": {
			{ID: "p1", Key: "app_name", Value: "Configuration Manager"},
			{ID: "p2", Key: "secret_key", Value: "shh", IsSecret: true},
		},
	}}

	art, err := newKeyLogic(keys, sols, params).ExportByToken("sol_valid", "env")
	require.NoError(t, err)

	content := string(art.Content)
	assert.Contains(t, content, "app_name=Configuration Manager")
	assert.Contains(t, content, "secret_key=shh")
	assert.Equal(t, []string{"k1"}, keys.touched)
	assert.Equal(t, "My_App_config.env", art.Filename)
}

func TestExportByTokenRejected(t *testing.T) {
	keys := &fakeAPIKeyRepo{}
	sols := &fakeSolutionRepo{solutions: map[string]*model.Solution{}}

	_, err := newKeyLogic(keys, sols, &fakeParameterRepo{}).ExportByToken("sol_bad", "json")
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
	assert.Empty(t, keys.touched)
}
