package handler

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gigbook/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxKeyCallerID   = "caller_id"
	ctxKeyCallerRole = "caller_role"
)

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthMiddleware 认证中间件
// 解析 Bearer JWT，把 (调用方ID, 角色) 放进请求上下文，后续守卫统一从这里取
func AuthMiddleware(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(401, gin.H{"code": 401, "message": "缺少认证信息"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(401, gin.H{"code": 401, "message": "认证信息无效或已过期"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"code": 401, "message": "认证信息无效"})
			return
		}

		sub, _ := claims["sub"].(string)
		callerID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || callerID <= 0 {
			c.AbortWithStatusJSON(401, gin.H{"code": 401, "message": "认证信息无效"})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ctxKeyCallerID, callerID)
		c.Set(ctxKeyCallerRole, role)
		c.Next()
	}
}

// rateLimitScript 固定窗口计数，INCR 第一次时设置窗口过期
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimitMiddleware 基于 Redis 的固定窗口限流（按客户端IP）
// 引擎自身无状态，限流计数放共享存储，多实例水平扩展时限额全局生效
// Redis 异常时放行，限流不可用不应拖垮主链路
func RateLimitMiddleware(rdb *redis.Client, perMinute int) gin.HandlerFunc {
	window := time.Minute
	return func(c *gin.Context) {
		key := "rl:" + c.ClientIP()
		current, err := rateLimitScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64()
		if err != nil {
			log.Printf("[RateLimit] 限流计数失败: %v", err)
			c.Next()
			return
		}
		if current > int64(perMinute) {
			c.AbortWithStatusJSON(429, gin.H{"code": 429, "message": "请求过于频繁，请稍后重试"})
			return
		}
		c.Next()
	}
}
