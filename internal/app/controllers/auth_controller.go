package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/app/middleware"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/services/container"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// InterfaceAuthController defines the auth controller interface
type InterfaceAuthController interface {
	Register()
	Login()
	Me()
}

// AuthController handles registration and login
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController creates a new auth controller
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// RegisterRequest is the citizen self-registration body. The identity
// number becomes the username after normalization.
type RegisterRequest struct {
	CCCD     string `json:"cccd" binding:"required" example:"001204012345"`
	Password string `json:"password" binding:"required" example:"matkhau123"`
	FullName string `json:"fullName" example:"Nguyễn Văn An"`
}

// LoginRequest is the credential exchange body.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"001204012345"`
	Password string `json:"password" binding:"required" example:"matkhau123"`
}

// HandleAuthFunc returns a gin handler dispatching to the auth controller
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "register":
			controller.Register()
		case "login":
			controller.Login()
		case "me":
			controller.Me()
		default:
			response.FailCode(ctx, code.ValidationError)
		}
	}
}

// Register creates a citizen account
// @Summary Đăng ký tài khoản công dân
// @Description Công dân tự đăng ký bằng số CCCD/CMND; số định danh trở thành tên đăng nhập
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Thông tin đăng ký"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (c *AuthController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu số CCCD hoặc mật khẩu")
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	user, err := authService.Register(req.CCCD, req.Password, req.FullName)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Created(c.Ctx, user)
}

// Login exchanges credentials for a bearer token
// @Summary Đăng nhập
// @Description Đổi tên đăng nhập và mật khẩu lấy bearer token (hạn 24 giờ)
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Thông tin đăng nhập"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailMessage(c.Ctx, code.ValidationError, "Thiếu tên đăng nhập hoặc mật khẩu")
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	user, token, err := authService.Login(req.Username, req.Password)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me resolves the current account and its person link
// @Summary Thông tin tài khoản hiện tại
// @Description Trả về tài khoản cùng nhân khẩu đã liên kết; kèm hướng dẫn khi chưa liên kết
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (c *AuthController) Me() {
	user := middleware.CurrentUser(c.Ctx)
	if user == nil {
		response.FailCode(c.Ctx, code.Unauthorized)
		return
	}

	identityService := c.Container.GetService("identity").(services.InterfaceIdentityService)
	link, err := identityService.ResolvePerson(user)
	if err != nil {
		response.Fail(c.Ctx, err)
		return
	}

	response.Success(c.Ctx, gin.H{
		"user": user,
		"link": link,
	})
}
