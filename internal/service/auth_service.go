package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gigbook/internal/config"
	"gigbook/internal/model"
	"gigbook/internal/repository"
	"gigbook/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 注册 / 登录
// 注册同样过黑名单：命中时返回与预约拦截相同的笼统文案
type AuthService struct {
	cfg      *config.Config
	users    repository.UserStore
	denylist *DenylistService
	audit    *AuditService
}

func NewAuthService(cfg *config.Config, users repository.UserStore, denylist *DenylistService, audit *AuditService) *AuthService {
	return &AuthService{cfg: cfg, users: users, denylist: denylist, audit: audit}
}

type RegisterRequest struct {
	Email    string
	Phone    string
	Password string
	Name     string
	Role     string
}

func (s *AuthService) Register(ctx context.Context, actor Actor, req *RegisterRequest) (*model.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, apperr.Validation("邮箱、密码、姓名不能为空")
	}
	if req.Role != model.RoleClient && req.Role != model.RolePerformer {
		return nil, apperr.Validation("角色不合法")
	}

	blocked, reason, err := s.denylist.Check(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if blocked {
		log.Printf("[Auth] 黑名单拦截注册: email=%s, reason=%s", req.Email, reason)
		s.audit.RecordSecurity(ctx, actor, model.AuditActionRegisterBlocked, model.EntityTypeUser, nil, map[string]interface{}{
			"email":  req.Email,
			"reason": reason,
		})
		return nil, apperr.Blocked()
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("该邮箱已注册")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashed),
		Name:     req.Name,
		Role:     req.Role,
		Active:   true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	s.audit.Record(ctx, Actor{ID: user.ID, IPAddress: actor.IPAddress, UserAgent: actor.UserAgent},
		model.AuditActionUserRegistered, model.EntityTypeUser, &user.ID, map[string]interface{}{
			"email": user.Email,
			"role":  user.Role,
		})

	log.Printf("[Auth] 用户注册成功: id=%d, role=%s", user.ID, user.Role)
	return user, nil
}

// Login 校验密码并签发 JWT，claims 携带用户ID与角色
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, apperr.Unauthorized("邮箱或密码错误")
		}
		return "", nil, fmt.Errorf("查询用户失败: %w", err)
	}
	if !user.Active {
		return "", nil, apperr.Forbidden("账号已停用")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized("邮箱或密码错误")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(user *model.User) (string, error) {
	if s.cfg.JWT.Secret == "" {
		return "", errors.New("未配置 JWT 密钥")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(s.cfg.JWT.ExpiryHours) * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}
