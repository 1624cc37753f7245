package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/service"
)

// Authenticator is implemented by service.AuthService.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Issue(ctx context.Context, u *model.User) (*service.Session, error)
	Refresh(ctx context.Context, raw string) (*service.Session, error)
	Logout(ctx context.Context, userID uint64, raw string) error
	Me(ctx context.Context, userID uint64) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth  Authenticator
	Users UserManager
}

func NewAuthHandler(a Authenticator, u UserManager) *AuthHandler {
	return &AuthHandler{Auth: a, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Surname  string  `json:"surname" validate:"max=100"`
	Username string  `json:"username" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

func sessionResp(s *service.Session) authResp {
	return authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

// Register creates a client account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	u, err := h.Users.Register(ctx, service.NewUserInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	s, err := h.Auth.Issue(ctx, u)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusCreated, sessionResp(s))
}

// Login: verify and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.KindBadRequest, "invalid request body", nil)
	}
	s, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, sessionResp(s))
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.KindBadRequest, "invalid request body", nil)
	}
	s, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, sessionResp(s))
}

// Logout revokes the refresh token in the body, or every session of the
// caller when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	var req refreshReq
	_ = c.Bind(&req)
	if err := h.Auth.Logout(c.Request().Context(), by.UserID, req.RefreshToken); err != nil {
		return response.FromError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	u, err := h.Auth.Me(c.Request().Context(), by.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, u)
}
