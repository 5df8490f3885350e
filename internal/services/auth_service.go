package services

import (
	"context"
	"strings"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/log"
)

// Account messages returned to clients.
const (
	MsgUserExists       = "Usuário já existe"
	MsgBadCredentials   = "Usuario ou senha incorretos"
	MsgMissingUsername  = "Campos obrigatórios faltando: username"
	MsgMissingPassword  = "Campos obrigatórios faltando: password"
	MsgMissingBothField = "Campos obrigatórios faltando: username, password"
)

type AuthService struct {
	users  UserStore
	tokens *auth.TokenIssuer
}

func NewAuthService(users UserStore, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if err := requireCredentials(username, password); err != nil {
		return core.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}
	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return core.User{}, err
	}
	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "User registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, u.ID)
	return u, nil
}

// Login returns a signed token. Unknown users and wrong passwords fail the
// same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if err := requireCredentials(username, password); err != nil {
		return "", err
	}
	u, err := s.users.UserByUsername(ctx, username)
	if core.IsKind(err, core.KindNotFound) {
		return "", core.UnauthorizedError(MsgBadCredentials)
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", core.UnauthorizedError(MsgBadCredentials)
	}
	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "User logged in",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, u.ID)
	return s.tokens.Issue(u.ID)
}

func requireCredentials(username, password string) error {
	switch {
	case username == "" && password == "":
		return &core.Error{Kind: core.KindRowValidation, Msg: MsgMissingBothField}
	case username == "":
		return &core.Error{Kind: core.KindRowValidation, Msg: MsgMissingUsername}
	case password == "":
		return &core.Error{Kind: core.KindRowValidation, Msg: MsgMissingPassword}
	}
	return nil
}
