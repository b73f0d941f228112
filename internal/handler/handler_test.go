package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"cascade/internal/handler"
	"cascade/internal/handler/dto"
	"cascade/internal/service"
	"cascade/internal/storage/memory"
)

// HandlerTestSuite exercises the HTTP surface against the in-memory store.
type HandlerTestSuite struct {
	suite.Suite
	mux *http.ServeMux
}

func (s *HandlerTestSuite) SetupTest() {
	svc := service.NewTaskService(memory.NewStore())
	h := handler.New(svc)

	s.mux = http.NewServeMux()
	h.RegisterRoutes(s.mux)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// makeRequest performs a request against the registered routes.
func (s *HandlerTestSuite) makeRequest(method, path string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

// createTask creates a task over HTTP and returns its response body.
func (s *HandlerTestSuite) createTask(name string, deps ...string) dto.TaskResponse {
	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{
		Name:         name,
		Dependencies: deps,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&task))
	return task
}

func (s *HandlerTestSuite) decodeError(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&errResp))
	return errResp
}

func (s *HandlerTestSuite) TestCreateTask() {
	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{
		Name:        "build",
		Description: "build the release",
		Tags:        map[string]string{"team": "infra"},
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var task dto.TaskResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&task))
	s.NotEmpty(task.ID)
	s.Equal("build", task.Name)
	s.Equal("pending", task.Status)
	s.Equal("infra", task.Tags["team"])
	s.Empty(task.Dependencies)
}

func (s *HandlerTestSuite) TestCreateTask_DerivedBlocked() {
	dep := s.createTask("dep")
	task := s.createTask("dependent", dep.ID)

	s.Equal("blocked", task.Status)
	s.Equal([]string{dep.ID}, task.Dependencies)
}

func (s *HandlerTestSuite) TestCreateTask_Validation() {
	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{Name: ""})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", s.decodeError(w).Error.Code)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	w = s.makeRequest(http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{Name: string(long)})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestGetTask() {
	created := s.createTask("task")

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var task dto.TaskResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&task))
	s.Equal(created.ID, task.ID)
}

func (s *HandlerTestSuite) TestGetTask_NotFound() {
	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-00000000dead", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("TASK_NOT_FOUND", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestGetTask_InvalidID() {
	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_REQUEST", s.decodeError(w).Error.Code)
}

func (s *HandlerTestSuite) TestListTasks() {
	s.createTask("first")
	s.createTask("second")

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list dto.TasksListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Equal(2, list.Total)
	s.Equal("second", list.Tasks[0].Name)
	s.Equal("first", list.Tasks[1].Name)
}

func (s *HandlerTestSuite) TestListTasks_Filtered() {
	dep := s.createTask("dep")
	s.createTask("dependent", dep.ID)

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks?status=blocked", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list dto.TasksListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Require().Equal(1, list.Total)
	s.Equal("dependent", list.Tasks[0].Name)

	w = s.makeRequest(http.MethodGet, "/api/v1/tasks?search=dep", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Equal(2, list.Total)
}

func (s *HandlerTestSuite) TestListTasks_TagFilter() {
	w := s.makeRequest(http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{
		Name: "tagged",
		Tags: map[string]string{"team": "infra"},
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	s.createTask("untagged")

	w = s.makeRequest(http.MethodGet, "/api/v1/tasks?tag=team:infra", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list dto.TasksListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Require().Equal(1, list.Total)
	s.Equal("tagged", list.Tasks[0].Name)

	w = s.makeRequest(http.MethodGet, "/api/v1/tasks?tag=nocolon", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestListTasks_InvalidStatus() {
	w := s.makeRequest(http.MethodGet, "/api/v1/tasks?status=bogus", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestUpdateTask() {
	created := s.createTask("original")

	name := "renamed"
	w := s.makeRequest(http.MethodPatch, "/api/v1/tasks/"+created.ID, dto.UpdateTaskRequest{Name: &name})
	s.Require().Equal(http.StatusOK, w.Code)

	var task dto.TaskResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&task))
	s.Equal("renamed", task.Name)
	s.Equal("pending", task.Status)
}

func (s *HandlerTestSuite) TestUpdateTask_InvalidStatus() {
	created := s.createTask("task")

	status := "bogus"
	w := s.makeRequest(http.MethodPatch, "/api/v1/tasks/"+created.ID, dto.UpdateTaskRequest{Status: &status})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestChangeStatus_Cascade() {
	x := s.createTask("x")
	y := s.createTask("y", x.ID)
	s.Require().Equal("blocked", y.Status)

	w := s.makeRequest(http.MethodPatch, "/api/v1/tasks/"+x.ID+"/status", dto.ChangeStatusRequest{Status: "completed"})
	s.Require().Equal(http.StatusOK, w.Code)

	var cascade dto.CascadeResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&cascade))
	s.Require().Equal(2, cascade.Total)
	s.Equal(x.ID, cascade.Updated[0].ID)
	s.Equal("completed", cascade.Updated[0].Status)
	s.Equal(y.ID, cascade.Updated[1].ID)
	s.Equal("pending", cascade.Updated[1].Status)
}

func (s *HandlerTestSuite) TestChangeStatus_InvalidStatus() {
	created := s.createTask("task")

	w := s.makeRequest(http.MethodPatch, "/api/v1/tasks/"+created.ID+"/status", dto.ChangeStatusRequest{Status: "done"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestChangeStatus_NotFound() {
	w := s.makeRequest(http.MethodPatch, "/api/v1/tasks/00000000-0000-0000-0000-00000000dead/status", dto.ChangeStatusRequest{Status: "completed"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestDeleteTask() {
	created := s.createTask("task")

	w := s.makeRequest(http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp dto.DeleteTaskResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.True(resp.Deleted)

	w = s.makeRequest(http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestGetDependencies() {
	dep := s.createTask("dep")
	task := s.createTask("task", dep.ID)

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/"+task.ID+"/dependencies", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list dto.TasksListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Require().Equal(1, list.Total)
	s.Equal(dep.ID, list.Tasks[0].ID)
}

func (s *HandlerTestSuite) TestGetDependents() {
	x := s.createTask("x")
	y := s.createTask("y", x.ID)

	w := s.makeRequest(http.MethodGet, "/api/v1/tasks/"+x.ID+"/dependents", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list dto.TasksListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&list))
	s.Require().Equal(1, list.Total)
	s.Equal(y.ID, list.Tasks[0].ID)
}

func (s *HandlerTestSuite) TestGetStats() {
	x := s.createTask("x")
	s.createTask("y", x.ID)

	w := s.makeRequest(http.MethodGet, "/api/v1/stats", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var stats dto.StatsResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&stats))
	s.Equal(2, stats.Total)
	s.Equal(1, stats.ByStatus["pending"])
	s.Equal(1, stats.ByStatus["blocked"])
}

func (s *HandlerTestSuite) TestHealthz() {
	w := s.makeRequest(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, w.Code)
}
