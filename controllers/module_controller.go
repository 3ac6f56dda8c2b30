package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/services"
)

type ModuleController struct {
	modules *services.ModuleService
}

func NewModuleController(modules *services.ModuleService) *ModuleController {
	return &ModuleController{modules: modules}
}

type moduleReq struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
}

// POST /modules
func (h *ModuleController) Create(c *gin.Context) {
	var req moduleReq
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.modules.Create(c.Request.Context(), middleware.CurrentUser(c).Username, services.ModuleInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GET /modules
func (h *ModuleController) List(c *gin.Context) {
	modules, err := h.modules.List(c.Request.Context(), middleware.CurrentUser(c).Username)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, modules)
}

// GET /modules/:module_id
func (h *ModuleController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.ModuleFrom(c))
}

// PATCH /modules/:module_id
func (h *ModuleController) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.modules.Update(c.Request.Context(), middleware.CurrentUser(c).Username, middleware.ModuleFrom(c).ID, services.ModulePatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DELETE /modules/:module_id
func (h *ModuleController) Delete(c *gin.Context) {
	if err := h.modules.Delete(c.Request.Context(), middleware.CurrentUser(c).Username, middleware.ModuleFrom(c).ID); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
