package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/middleware"
	"github.com/cleberrangel/timelyai-api/internal/model"
	"github.com/cleberrangel/timelyai-api/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TaskHandler expõe o CRUD de tarefas e o export
type TaskHandler struct {
	tasks  *service.TaskService
	export *service.ExcelGenerator
}

// NewTaskHandler cria o handler de tarefas
func NewTaskHandler(tasks *service.TaskService, export *service.ExcelGenerator) *TaskHandler {
	return &TaskHandler{tasks: tasks, export: export}
}

// bindDetails aceita {"taskDetails": {...}} ou os campos na raiz
func bindDetails(c *gin.Context) (model.TaskDetails, bool) {
	var req model.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return model.TaskDetails{}, false
	}

	d := req.Details()
	middleware.SanitizeFields(middleware.TaskFieldConfig(), &d.Title, &d.DueDate, &d.Duration, &d.Category)
	return d, true
}

// List GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    tasks,
		Meta:    &model.Meta{Total: len(tasks)},
	})
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), userID(c), middleware.SanitizeID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	details, ok := bindDetails(c)
	if !ok {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID(c), details)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

// Update PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	details, ok := bindDetails(c)
	if !ok {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID(c), middleware.SanitizeID(c.Param("id")), details)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id := middleware.SanitizeID(c.Param("id"))
	if err := h.tasks.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// Export GET /api/tasks/export
func (h *TaskHandler) Export(c *gin.Context) {
	buf, err := h.export.Export(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("timelyai_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
