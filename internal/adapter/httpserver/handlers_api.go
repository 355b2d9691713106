package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	apperrors "github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/errors"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/state"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	contentTypeJSONPatch  = "application/json-patch+json"
	contentTypeMergePatch = "application/merge-patch+json"
)

type taskStateRequest struct {
	Checked *bool `json:"checked"`
}

type taskNotesRequest struct {
	Notes *string `json:"notes"`
}

type taskCategoryRequest struct {
	Category *string `json:"category"`
}

type taskKanbanRequest struct {
	KanbanStatus *string `json:"kanbanStatus"`
}

type initializeRequest struct {
	Fabrics      []domain.FabricDescriptor  `json:"fabrics"`
	Sections     []domain.SectionDescriptor `json:"sections"`
	ExistingData *domain.Document           `json:"existingData"`
}

type commentUpdateRequest struct {
	Content *string `json:"content"`
}

type commentResponse struct {
	Comment domain.Comment  `json:"comment"`
	Data    domain.Document `json:"data"`
}

func (s *Server) registerAPIRoutes() {
	limited := newRateLimiter(s.config.APIRateLimit, s.config.APIRateBurst)

	api := s.echo.Group("/api", middleware.BodyLimit(apiBodyLimit))

	api.GET("/data", s.handleGetData)
	api.PUT("/data", s.handleReplaceData, limited)
	api.PATCH("/data", s.handlePatchData, limited)

	api.PATCH("/fabric/:fabricId/task/:taskId/state", s.handleTaskState, limited)
	api.PATCH("/fabric/:fabricId/task/:taskId/notes", s.handleTaskNotes, limited)
	api.PATCH("/fabric/:fabricId/task/:taskId/category", s.handleTaskCategory, limited)
	api.PATCH("/fabric/:fabricId/task/:taskId/kanban", s.handleTaskKanban, limited)
	api.PUT("/fabric/:fabricId/testcase/:testCaseId", s.handleTestCaseState, limited)
	api.PUT("/fabric/:fabricId/subchecklist", s.handleSaveSubChecklist, limited)
	api.DELETE("/fabric/:fabricId/subchecklist", s.handleDeleteSubChecklist, limited)
	api.PATCH("/fabric/:fabricId/current", s.handleCurrentFabric, limited)

	api.POST("/initialize", s.handleInitialize, limited)

	api.PUT("/users/:userId", s.handleUpsertUser, limited)
	api.PATCH("/users/:userId/current", s.handleCurrentUser, limited)

	api.POST("/task/:taskId/comments", s.handleAddComment, limited)
	api.PATCH("/task/:taskId/comments/:commentId", s.handleUpdateComment, limited)
	api.DELETE("/task/:taskId/comments/:commentId", s.handleDeleteComment, limited)

	api.PATCH("/notifications/:id/read", s.handleNotificationRead, limited)
	api.DELETE("/notifications", s.handleClearNotifications, limited)
}

func (s *Server) handleGetData(c echo.Context) error {
	return c.JSON(http.StatusOK, s.app.GetAll(c.Request().Context()))
}

func (s *Server) handleReplaceData(c echo.Context) error {
	var doc domain.Document
	if err := decodeJSON(c, &doc); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.app.ReplaceAll(c.Request().Context(), doc))
}

func (s *Server) handlePatchData(c echo.Context) error {
	kind := state.MergePatch
	if mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType)); mediaType == contentTypeJSONPatch {
		kind = state.JSONPatch
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}

	doc, err := s.app.PatchDocument(c.Request().Context(), body, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleTaskState(c echo.Context) error {
	fabricID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	var req taskStateRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Checked == nil {
		return missingField("checked")
	}

	return c.JSON(http.StatusOK, s.app.SetTaskState(c.Request().Context(), fabricID, taskID, *req.Checked))
}

func (s *Server) handleTaskNotes(c echo.Context) error {
	fabricID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	var req taskNotesRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Notes == nil {
		return missingField("notes")
	}

	return c.JSON(http.StatusOK, s.app.SetTaskNotes(c.Request().Context(), fabricID, taskID, *req.Notes))
}

func (s *Server) handleTaskCategory(c echo.Context) error {
	fabricID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	var req taskCategoryRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Category == nil {
		return missingField("category")
	}

	return c.JSON(http.StatusOK, s.app.SetTaskCategory(c.Request().Context(), fabricID, taskID, *req.Category))
}

func (s *Server) handleTaskKanban(c echo.Context) error {
	fabricID, taskID, err := taskParams(c)
	if err != nil {
		return err
	}

	var req taskKanbanRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.KanbanStatus == nil {
		return missingField("kanbanStatus")
	}

	return c.JSON(http.StatusOK, s.app.SetTaskKanbanStatus(c.Request().Context(), fabricID, taskID, *req.KanbanStatus))
}

func (s *Server) handleTestCaseState(c echo.Context) error {
	fabricID, err := pathParam(c, "fabricId")
	if err != nil {
		return err
	}
	testCaseID, err := pathParam(c, "testCaseId")
	if err != nil {
		return err
	}

	value, err := readJSONValue(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, s.app.SetTestCaseState(c.Request().Context(), fabricID, testCaseID, value))
}

func (s *Server) handleSaveSubChecklist(c echo.Context) error {
	fabricID, err := pathParam(c, "fabricId")
	if err != nil {
		return err
	}

	value, err := readJSONValue(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, s.app.SaveSubChecklist(c.Request().Context(), fabricID, value))
}

func (s *Server) handleDeleteSubChecklist(c echo.Context) error {
	fabricID, err := pathParam(c, "fabricId")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.app.DeleteSubChecklist(c.Request().Context(), fabricID))
}

func (s *Server) handleCurrentFabric(c echo.Context) error {
	fabricID, err := pathParam(c, "fabricId")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.app.SetCurrentFabric(c.Request().Context(), fabricID))
}

func (s *Server) handleInitialize(c echo.Context) error {
	var req initializeRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	doc := s.app.Initialize(c.Request().Context(), req.Fabrics, req.Sections, req.ExistingData)
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleUpsertUser(c echo.Context) error {
	userID, err := pathParam(c, "userId")
	if err != nil {
		return err
	}

	var user domain.User
	if err := decodeJSON(c, &user); err != nil {
		return err
	}
	if user.ID != "" && user.ID != userID {
		return apperrors.ValidationError("user id in body does not match path").
			WithField("path_id", userID).
			WithField("body_id", user.ID)
	}
	user.ID = userID
	if strings.TrimSpace(user.Name) == "" {
		return missingField("name")
	}

	return c.JSON(http.StatusOK, s.app.UpsertUser(c.Request().Context(), user))
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	userID, err := pathParam(c, "userId")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.app.SetCurrentUser(c.Request().Context(), userID))
}

func (s *Server) handleAddComment(c echo.Context) error {
	taskID, err := pathParam(c, "taskId")
	if err != nil {
		return err
	}

	var comment domain.Comment
	if err := decodeJSON(c, &comment); err != nil {
		return err
	}
	if strings.TrimSpace(comment.UserID) == "" {
		return missingField("userId")
	}
	if strings.TrimSpace(comment.Content) == "" {
		return missingField("content")
	}
	comment.TaskID = taskID

	created, doc, err := s.app.AddComment(c.Request().Context(), comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentResponse{Comment: created, Data: doc})
}

func (s *Server) handleUpdateComment(c echo.Context) error {
	taskID, err := pathParam(c, "taskId")
	if err != nil {
		return err
	}
	commentID, err := pathParam(c, "commentId")
	if err != nil {
		return err
	}

	var req commentUpdateRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		return missingField("content")
	}

	doc, err := s.app.UpdateComment(c.Request().Context(), taskID, commentID, *req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteComment(c echo.Context) error {
	taskID, err := pathParam(c, "taskId")
	if err != nil {
		return err
	}
	commentID, err := pathParam(c, "commentId")
	if err != nil {
		return err
	}

	doc, err := s.app.DeleteComment(c.Request().Context(), taskID, commentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleNotificationRead(c echo.Context) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}

	doc, err := s.app.MarkNotificationRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleClearNotifications(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("userId"))
	return c.JSON(http.StatusOK, s.app.ClearNotifications(c.Request().Context(), userID))
}

// --- request helpers ---

func pathParam(c echo.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		return "", apperrors.ValidationError(fmt.Sprintf("%s must not be empty", name)).WithField("param", name)
	}
	return v, nil
}

func taskParams(c echo.Context) (fabricID, taskID string, err error) {
	if fabricID, err = pathParam(c, "fabricId"); err != nil {
		return "", "", err
	}
	if taskID, err = pathParam(c, "taskId"); err != nil {
		return "", "", err
	}
	return fabricID, taskID, nil
}

func missingField(name string) error {
	return apperrors.ValidationError(fmt.Sprintf("field %q is required", name)).WithField("field", name)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var tooLarge *echo.HTTPError
		if errors.As(err, &tooLarge) {
			return nil, tooLarge
		}
		return nil, apperrors.ValidationError("failed to read request body").WithCause(err)
	}
	return body, nil
}

func decodeJSON(c echo.Context, v any) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.ValidationError("invalid JSON body").WithCause(err)
	}
	return nil
}

// readJSONValue reads an opaque JSON body, rejecting anything that does not parse.
func readJSONValue(c echo.Context) (json.RawMessage, error) {
	body, err := readBody(c)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, apperrors.ValidationError("body must be a JSON value")
	}
	return json.RawMessage(body), nil
}
