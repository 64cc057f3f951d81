package utils

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// 未配置密钥时使用进程内随机密钥，重启后旧令牌全部失效
var jwtSecret = randomSecret()

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("生成随机密钥失败: " + err.Error())
	}
	return b
}

// InitJWT 设置会话令牌的签名密钥，secret 为空时生成随机密钥
func InitJWT(secret string) {
	if secret == "" {
		jwtSecret = randomSecret()
		Logger.Warn().Msg("未配置 FUNNEL_JWT_KEY，使用随机签名密钥")
		return
	}
	jwtSecret = []byte(secret)
}

// GenerateSessionToken 为会话生成JWT令牌
func GenerateSessionToken(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}
	return tokenString, nil
}

// ParseSessionToken 解析和验证会话令牌，返回会话ID
func ParseSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("无效的token")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("token缺少会话ID")
	}
	return sid, nil
}
