package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

var contextUserKey = "user"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
}

func GetUserClaims(usr academy.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID.String(),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		Role:    usr.Role,
		IsAdmin: usr.IsAdmin || usr.Role == academy.RoleAdmin,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	cfg := jwtConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(cfg.SigningMethod), claims)

	ss, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get("userToken").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (api *academyAPI) getContextUser(ctx echo.Context) (academy.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(academy.User); ok {
		return usr, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return academy.User{}, err
	}
	id, err := academy.ParseID(claims.Subject)
	if err != nil {
		return academy.User{}, errUnauthorized
	}
	usr, err := api.repo.GetUser(id)
	if err != nil {
		if academy.IsNotFound(err) { // deleted since the token was issued
			return academy.User{}, errUnauthorized
		}
		return academy.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func (api *academyAPI) registerAuth(g *echo.Group, jwt echo.MiddlewareFunc) {
	g.POST("/login", api.login)
	g.GET("/me", api.me, jwt)
}

func (api *academyAPI) login(ctx echo.Context) error {
	var data academy.Credentials
	if err := api.bind(ctx, &data); err != nil {
		return err
	}

	usr, err := api.repo.GetUserByEmail(data.Email)
	if err != nil {
		if academy.IsNotFound(err) {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "finding user by email")
	}
	if len(usr.PasswordHash) == 0 || usr.CheckPassword(data.Password) != nil {
		return errAuthenticationFailed
	}
	if usr.Role == academy.RoleStudent {
		return errHttpForbidden
	}

	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, academy.OK(academy.LoginResult{
		Token:     token,
		ExpiresIn: int64(api.conf.Server.JWTExpirationDelta / time.Second),
		User:      usr,
	}))
}

func (api *academyAPI) me(ctx echo.Context) error {
	usr, err := api.getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, academy.OK(usr))
}
