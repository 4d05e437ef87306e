package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crewdeck/crewdeck/internal/domain/model"
	apperrors "github.com/crewdeck/crewdeck/internal/errors"
	"github.com/crewdeck/crewdeck/internal/mocks"
	"github.com/crewdeck/crewdeck/internal/service"
)

type jobHandlersFixture struct {
	repo *mocks.MockJobRepository
	h    *JobHandlers
}

func newJobHandlers(t *testing.T) *jobHandlersFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	svc, err := service.NewJobService(service.JobServiceOptions{Jobs: repo})
	require.NoError(t, err)
	return &jobHandlersFixture{repo: repo, h: &JobHandlers{Svc: svc}}
}

func TestJobHandlers_Create(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req *model.CreateJobRequest) (*model.Job, error) {
			return &model.Job{ID: "j1", JobNumber: req.JobNumber, Title: req.Title, Status: req.Status}, nil
		})

	body := `{"job_number":"J-1001","title":"Roof repair"}`
	r := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
	w := httptest.NewRecorder()
	f.h.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"job_number":"J-1001"`)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestJobHandlers_CreateRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)

	r := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"job_number":"J-1","nope":true}`))
	w := httptest.NewRecorder()
	f.h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestJobHandlers_CreateValidation(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)

	r := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"title":"no number"}`))
	w := httptest.NewRecorder()
	f.h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "job_number is required")
}

func TestJobHandlers_ListParsesFilters(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)

	var gotOpts model.JobsListOptions
	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, opts model.JobsListOptions) ([]*model.Job, error) {
			gotOpts = opts
			return []*model.Job{{ID: "j1"}}, nil
		})
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	r := httptest.NewRequest(http.MethodGet, "/api/jobs?status=in_progress&q=roof&limit=10&offset=20&sort=due_date&dir=asc", nil)
	w := httptest.NewRecorder()
	f.h.List(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotOpts.Status)
	assert.Equal(t, model.JobStatusInProgress, *gotOpts.Status)
	require.NotNil(t, gotOpts.Q)
	assert.Equal(t, "roof", *gotOpts.Q)
	assert.Equal(t, 10, gotOpts.Limit)
	assert.Equal(t, 20, gotOpts.Offset)
	assert.Equal(t, "due_date", gotOpts.Sort)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestJobHandlers_ListIgnoresInvalidStatus(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)

	f.repo.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, opts model.JobsListOptions) ([]*model.Job, error) {
			assert.Nil(t, opts.Status)
			return nil, nil
		})
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(int64(0), nil)

	r := httptest.NewRequest(http.MethodGet, "/api/jobs?status=bogus", nil)
	w := httptest.NewRecorder()
	f.h.List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJobHandlers_GetNotFound(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)
	f.repo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, apperrors.NotFound("job not found"))

	r := httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil)
	r.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	f.h.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestJobHandlers_Complete(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)
	f.repo.EXPECT().Update(gomock.Any(), "j1", gomock.Any()).
		DoAndReturn(func(_ any, id string, req model.UpdateJobRequest) (*model.Job, error) {
			require.NotNil(t, req.Status)
			assert.Equal(t, model.JobStatusCompleted, *req.Status)
			return &model.Job{ID: id, Status: *req.Status}, nil
		})

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/j1/complete", nil)
	r.SetPathValue("id", "j1")
	w := httptest.NewRecorder()
	f.h.Complete(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestJobHandlers_DeleteBlockedWhileInProgress(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)
	f.repo.EXPECT().GetByID(gomock.Any(), "j1").
		Return(&model.Job{ID: "j1", Status: model.JobStatusInProgress}, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil)
	r.SetPathValue("id", "j1")
	w := httptest.NewRecorder()
	f.h.Delete(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestJobHandlers_Delete(t *testing.T) {
	t.Parallel()
	f := newJobHandlers(t)
	f.repo.EXPECT().GetByID(gomock.Any(), "j1").
		Return(&model.Job{ID: "j1", Status: model.JobStatusCompleted}, nil)
	f.repo.EXPECT().Delete(gomock.Any(), "j1").Return(nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/jobs/j1", nil)
	r.SetPathValue("id", "j1")
	w := httptest.NewRecorder()
	f.h.Delete(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
