package group

import (
	"net/http"

	"ChatProject/middleware/security"
	"ChatProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handler 群组 REST 接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(auth *gin.RouterGroup) {
	auth.POST("/creategroup", h.create)
	auth.POST("/addmember", h.addMember)
	auth.DELETE("/removemember", h.removeMember)
	auth.DELETE("/leavegroup", h.leave)
	auth.PUT("/changeadmin", h.changeAdmin)
}

type createReq struct {
	Name string `json:"name" binding:"required,max=60"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	g, err := h.svc.Create(c.Request.Context(), security.UserID(c), req.Name)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusCreated, g)
}

type memberReq struct {
	GroupID string `json:"groupId" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

func (h *Handler) addMember(c *gin.Context) {
	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.AddMember(c.Request.Context(), security.UserID(c), req.GroupID, req.UserID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) removeMember(c *gin.Context) {
	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.RemoveMember(c.Request.Context(), security.UserID(c), req.GroupID, req.UserID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, m)
}

type groupReq struct {
	GroupID string `json:"groupId" binding:"required"`
}

func (h *Handler) leave(c *gin.Context) {
	var req groupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.Leave(c.Request.Context(), security.UserID(c), req.GroupID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) changeAdmin(c *gin.Context) {
	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.ChangeAdmin(c.Request.Context(), security.UserID(c), req.GroupID, req.UserID); err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.Status(http.StatusOK)
}
