package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Data-Dreamersambit/Audio-Player/internal/middleware"
	"github.com/Data-Dreamersambit/Audio-Player/internal/services"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

type AuthHandler struct {
	accounts *services.AccountService
	dev      bool
}

func NewAuthHandler(accounts *services.AccountService, dev bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, dev: dev}
}

// POST /api/users/signup (multipart, optional profileImage)
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	params := services.SignupParams{
		Username: c.FormValue("username"),
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Gender:   c.FormValue("gender"),
	}
	if file, err := readFormFile(c, "profileImage"); err == nil {
		params.ProfileImage = file
	}

	user, token, exp, err := h.accounts.Signup(c.Context(), params)
	if err != nil {
		return utils.RespondError(c, err)
	}
	h.setSessionCookie(c, token, exp)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully",
		"user": fiber.Map{
			"id":           user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"profileImage": user.ProfileImage,
		},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/users/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}

	user, token, exp, err := h.accounts.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return utils.RespondError(c, err)
	}
	h.setSessionCookie(c, token, exp)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"user":    user,
	})
}

// POST /api/users/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GET /api/users/authenticate
func (h *AuthHandler) Authenticate(c *fiber.Ctx) error {
	user, err := h.accounts.Authenticate(c.Context(), middleware.UserID(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// PUT /api/users/:id (JSON or multipart with profileImage)
func (h *AuthHandler) Update(c *fiber.Ctx) error {
	var params services.UpdateParams

	if form, err := c.MultipartForm(); err == nil {
		params = updateParamsFromForm(form.Value)
		if file, err := readFormFile(c, "profileImage"); err == nil {
			params.ProfileImage = file
		}
	} else {
		var body struct {
			Username *string `json:"username"`
			Name     *string `json:"name"`
			Email    *string `json:"email"`
			Password *string `json:"password"`
			Gender   *string `json:"gender"`
		}
		if err := c.BodyParser(&body); err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
		}
		params = services.UpdateParams{
			Username: body.Username,
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Gender:   body.Gender,
		}
	}

	user, err := h.accounts.Update(c.Context(), middleware.UserID(c), c.Params("id"), params)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"user": fiber.Map{
			"id":           user.ID,
			"username":     user.Username,
			"name":         user.Name,
			"email":        user.Email,
			"profileImage": user.ProfileImage,
			"gender":       user.Gender,
		},
	})
}

// DELETE /api/users/:id
func (h *AuthHandler) Delete(c *fiber.Ctx) error {
	if err := h.accounts.Delete(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return utils.RespondError(c, err)
	}
	h.clearSessionCookie(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User account and associated data deleted successfully.",
	})
}

func updateParamsFromForm(values map[string][]string) services.UpdateParams {
	pick := func(key string) *string {
		if vs, ok := values[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	return services.UpdateParams{
		Username: pick("username"),
		Name:     pick("name"),
		Email:    pick("email"),
		Password: pick("password"),
		Gender:   pick("gender"),
	}
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		Secure:   !h.dev,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   !h.dev,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
