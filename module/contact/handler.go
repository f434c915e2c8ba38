package contact

import (
	"net/http"

	"ChatProject/middleware/security"
	"ChatProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handler 联系人 REST 接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(auth *gin.RouterGroup) {
	auth.POST("/addcontact", h.add)
	auth.DELETE("/removecontact", h.remove)
	auth.POST("/acceptrequest", h.accept)
	auth.POST("/declinerequest", h.decline)
	auth.POST("/setalias", h.setAlias)
	auth.POST("/setcolor", h.setColor)
	auth.GET("/relationship/:id", h.relationship)
	auth.GET("/requests", h.requests)
	auth.GET("/contacts", h.contacts)
	auth.GET("/contact/:id", h.getContact)
	auth.GET("/contact/:id/colors", h.colors)
	auth.GET("/online/:id", h.online)
}

type idReq struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) add(c *gin.Context) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.Add(c.Request.Context(), security.UserID(c), req.ID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) remove(c *gin.Context) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.Remove(c.Request.Context(), security.UserID(c), req.ID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) accept(c *gin.Context) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.Accept(c.Request.Context(), security.UserID(c), req.ID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) decline(c *gin.Context) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.Decline(c.Request.Context(), security.UserID(c), req.ID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

type aliasReq struct {
	UserID     string `json:"userId" binding:"required"`
	IDToChange string `json:"idToChange" binding:"required"`
	Alias      string `json:"alias" binding:"required,max=60"`
}

func (h *Handler) setAlias(c *gin.Context) {
	var req aliasReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.SetAlias(c.Request.Context(), security.UserID(c), req.UserID, req.IDToChange, req.Alias)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

type colorReq struct {
	UserID     string `json:"userId" binding:"required"`
	IDToChange string `json:"idToChange" binding:"required"`
	Color      string `json:"color" binding:"required,max=10"`
}

func (h *Handler) setColor(c *gin.Context) {
	var req colorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.SetColor(c.Request.Context(), security.UserID(c), req.UserID, req.IDToChange, req.Color)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) relationship(c *gin.Context) {
	out, err := h.svc.Relationship(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) requests(c *gin.Context) {
	out, err := h.svc.Requests(c.Request.Context(), security.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) contacts(c *gin.Context) {
	out, err := h.svc.Contacts(c.Request.Context(), security.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getContact(c *gin.Context) {
	out, err := h.svc.GetContact(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) colors(c *gin.Context) {
	out, err := h.svc.Colors(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) online(c *gin.Context) {
	on, err := h.svc.Online(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": on})
}
