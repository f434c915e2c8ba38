package user

import (
	"net/http"

	"ChatProject/middleware/security"
	"ChatProject/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handler 用户相关 REST 接口
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register 挂路由；auth 组的请求已带登录用户
func (h *Handler) Register(public, auth *gin.RouterGroup) {
	public.POST("/register", h.register)
	public.POST("/login", h.login)
	auth.POST("/search", h.search)
	auth.GET("/search/:id", h.getUser)
	auth.GET("/myself", h.myself)
	auth.PUT("/updatemyself", h.updateMyself)
	auth.GET("/validatetoken", h.validateToken)
}

type registerReq struct {
	Firstname string `json:"firstname" binding:"required,max=30"`
	Surname   string `json:"surname" binding:"required,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,max=255"`
	Gender    bool   `json:"gender"`
	Year      int    `json:"year" binding:"required,min=1900"`
	Month     int    `json:"month" binding:"required,min=1,max=12"`
	Day       int    `json:"day" binding:"required,min=1,max=31"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Firstname: req.Firstname,
		Surname:   req.Surname,
		Email:     req.Email,
		Password:  req.Password,
		Gender:    req.Gender,
		Year:      req.Year,
		Month:     req.Month,
		Day:       req.Day,
	})
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=255"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	token, expireAt, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expire_at": expireAt.Unix()})
}

type searchReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.Search(c.Request.Context(), security.UserID(c), req.Name)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getUser(c *gin.Context) {
	p, err := h.svc.GetUser(c.Request.Context(), security.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) myself(c *gin.Context) {
	u, err := h.svc.Myself(c.Request.Context(), security.UserID(c))
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateReq struct {
	Firstname string `json:"firstname" binding:"required,max=30"`
	Surname   string `json:"surname" binding:"required,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Gender    bool   `json:"gender"`
	Year      int    `json:"year" binding:"required,min=1900"`
	Month     int    `json:"month" binding:"required,min=1,max=12"`
	Day       int    `json:"day" binding:"required,min=1,max=31"`
	City      string `json:"city" binding:"max=255"`
	Country   string `json:"country" binding:"max=255"`
}

func (h *Handler) updateMyself(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	err := h.svc.UpdateMyself(c.Request.Context(), security.UserID(c), UpdateInput{
		Firstname: req.Firstname,
		Surname:   req.Surname,
		Email:     req.Email,
		Gender:    req.Gender,
		Year:      req.Year,
		Month:     req.Month,
		Day:       req.Day,
		City:      req.City,
		Country:   req.Country,
	})
	if err != nil {
		c.JSON(errs.HTTPStatus(err), errs.Reply(err))
		return
	}
	c.Status(http.StatusOK)
}

// validateToken 中间件已校验过，走到这里就是有效令牌
func (h *Handler) validateToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": security.UserID(c)}})
}
