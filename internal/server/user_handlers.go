package server

import (
	"pantry/internal/models"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type userRequest struct {
	Email    *string `json:"email" form:"email"`
	Password *string `json:"password" form:"password"`
	Name     *string `json:"name" form:"name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateUser handles POST /api/user/create
// @Summary Register a user
// @Tags user
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,name=string} true "Registration"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/create [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Email:    deref(req.Email),
		Password: deref(req.Password),
		Name:     deref(req.Name),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// CreateToken handles POST /api/user/token
// @Summary Obtain an API token
// @Description Returns a new token and revokes any previous one for the account.
// @Tags user
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/token [post]
func (s *Server) CreateToken(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	verr := models.NewValidationError("Email and password are required")
	if deref(req.Email) == "" {
		verr.WithField("email", "This field may not be blank.")
	}
	if deref(req.Password) == "" {
		verr.WithField("password", "This field may not be blank.")
	}
	if len(verr.Fields) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest, verr)
	}

	token, _, err := s.tokenService.IssueToken(c.UserContext(), *req.Email, *req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(TokenResponse{Token: token})
}

// Logout handles POST /api/user/logout
// @Summary Revoke the current token
// @Tags user
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /user/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.tokenService.Revoke(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMe handles GET /api/user/me
// @Summary Current user profile
// @Tags user
// @Produce json
// @Security TokenAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	return c.JSON(toUserResponse(currentUser(c)))
}

// UpdateMe handles PUT /api/user/me. Email and password are required.
// @Summary Replace the current user profile
// @Tags user
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body object{email=string,password=string,name=string} true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	return s.updateMe(c, false)
}

// PatchMe handles PATCH /api/user/me
// @Summary Update parts of the current user profile
// @Tags user
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body object{email=string,password=string,name=string} true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/me [patch]
func (s *Server) PatchMe(c *fiber.Ctx) error {
	return s.updateMe(c, true)
}

func (s *Server) updateMe(c *fiber.Ctx, partial bool) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if !partial {
		verr := models.NewValidationError("Email and password are required")
		if req.Email == nil {
			verr.WithField("email", "This field is required.")
		}
		if req.Password == nil {
			verr.WithField("password", "This field is required.")
		}
		if len(verr.Fields) > 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest, verr)
		}
		if req.Name == nil {
			empty := ""
			req.Name = &empty
		}
	}

	userID := currentUserID(c)
	user, err := s.userService.UpdateProfile(c.UserContext(), userID, service.UpdateProfileInput{
		TargetID: userID,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// DeleteMe handles DELETE /api/user/me
// @Summary Delete the current account and everything it owns
// @Tags user
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	if err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
