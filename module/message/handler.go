package message

import (
	"net/http"

	"ChatProject/middleware/security"
	"ChatProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handler 私聊消息 REST 接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(auth *gin.RouterGroup) {
	auth.POST("/sendmessage", h.send)
	auth.POST("/messages", h.list)
	auth.GET("/contactmessageinfo", h.digests)
	auth.GET("/contactmessageinfo/:id", h.digest)
	auth.POST("/receivemessages", h.receive)
	auth.POST("/readmessages", h.read)
}

type sendReq struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required,max=1000"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.Send(c.Request.Context(), security.UserID(c), req.UserID, req.Message)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, m)
}

type listReq struct {
	UserID string `json:"userId" binding:"required"`
	Start  string `json:"start"` // "-1" 或空表示从最新开始
	Number int64  `json:"number" binding:"required,min=1,max=200"`
}

func (h *Handler) list(c *gin.Context) {
	var req listReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.List(c.Request.Context(), security.UserID(c), req.UserID, req.Start, req.Number)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) digests(c *gin.Context) {
	out, err := h.svc.Digests(c.Request.Context(), security.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) digest(c *gin.Context) {
	out, err := h.svc.Digest(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

type peerReq struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) receive(c *gin.Context) {
	var req peerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Receive(c.Request.Context(), security.UserID(c), req.UserID); err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) read(c *gin.Context) {
	var req peerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Read(c.Request.Context(), security.UserID(c), req.UserID); err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.Status(http.StatusOK)
}
