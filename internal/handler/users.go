package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-reservation/internal/model"
	"github.com/iliyamo/salon-reservation/internal/response"
	"github.com/iliyamo/salon-reservation/internal/service"
)

// UserManager is implemented by service.UserService.
type UserManager interface {
	Register(ctx context.Context, in service.NewUserInput) (*model.User, error)
	Create(ctx context.Context, in service.NewUserInput, by service.Requester) (*model.User, error)
	Get(ctx context.Context, id uint64, by service.Requester) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint64, in service.UpdateUserInput, by service.Requester) error
	Deactivate(ctx context.Context, id uint64, by service.Requester) (bool, error)
}

type UserHandler struct {
	Users UserManager
}

func NewUserHandler(u UserManager) *UserHandler { return &UserHandler{Users: u} }

type createUserReq struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Surname  string  `json:"surname" validate:"max=100"`
	Username string  `json:"username" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Role     string  `json:"role" validate:"omitempty,role"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Photo    *string `json:"photo" validate:"omitempty,max=512"`
}

type updateUserReq struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Surname  *string `json:"surname" validate:"omitempty,max=100"`
	Username *string `json:"username" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role" validate:"omitempty,role"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Photo    *string `json:"photo" validate:"omitempty,max=512"`
}

func (r createUserReq) input() service.NewUserInput {
	return service.NewUserInput{
		Name:     r.Name,
		Surname:  r.Surname,
		Username: r.Username,
		Password: r.Password,
		Role:     model.Role(r.Role),
		Phone:    r.Phone,
		Photo:    r.Photo,
	}
}

func (h *UserHandler) List(c echo.Context) error {
	items, err := h.Users.List(c.Request().Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, items)
}

func (h *UserHandler) Get(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	u, err := h.Users.Get(c.Request().Context(), id, by)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	var req createUserReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	u, err := h.Users.Create(c.Request().Context(), req.input(), by)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusCreated, u)
}

func (h *UserHandler) Update(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req updateUserReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	in := service.UpdateUserInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
		Photo:    req.Photo,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		in.Role = &role
	}
	ctx := c.Request().Context()
	if err := h.Users.Update(ctx, id, in, by); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Users.Get(ctx, id, by)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	by, ok := requester(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return invalidID(c)
	}
	done, err := h.Users.Deactivate(c.Request().Context(), id, by)
	if err != nil {
		return response.FromError(c, err)
	}
	return deleted(c, "user", done)
}
