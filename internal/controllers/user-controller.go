package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-cafe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users services.UserService
}

func NewUserController(users services.UserService) *UserController {
	return &UserController{users: users}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Role     string `json:"role" binding:"required"`
}

// ListUsers godoc
// @Summary List staff
// @Tags manager
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/manager/users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Add a staff member
// @Description Roles: chief, receptionist, inventory, manager. stakeholder is accepted as manager.
// @Tags manager
// @Accept json
// @Produce json
// @Param user body createUserRequest true "Staff member"
// @Success 201 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/manager/users [post]
func (uc *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user := &models.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	}
	if user.Name == "" {
		user.Name = req.Username
	}
	if err := uc.users.CreateUser(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// DeleteUser godoc
// @Summary Remove a staff member
// @Description History rows keep the change with no author. The last manager and the caller cannot be removed.
// @Tags manager
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/manager/users/{id} [delete]
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := uc.users.DeleteUser(middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
