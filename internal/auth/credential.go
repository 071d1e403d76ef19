package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/hitokoto/internal/model"
)

// credentialIssuer はクレデンシャルのissクレームに設定する値。
const credentialIssuer = "hitokoto"

var (
	// ErrCredentialInvalid はクレデンシャルが不正（改ざん・形式不正）であることを示す。
	ErrCredentialInvalid = errors.New("credential is invalid")
	// ErrCredentialExpired はクレデンシャルの有効期限が切れていることを示す。
	ErrCredentialExpired = errors.New("credential is expired")
	// ErrCredentialRevoked はログアウト済みのクレデンシャルであることを示す。
	ErrCredentialRevoked = errors.New("credential is revoked")
)

// credentialCodec はセッション情報をHS256署名付きJWTとしてエンコード・検証する。
// subに表示名、jtiにセッショントークン、expに有効期限を格納する。
type credentialCodec struct {
	secret []byte
}

func (c *credentialCodec) encode(session *model.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    credentialIssuer,
		Subject:   session.DisplayName,
		ID:        session.Token,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// decode はクレデンシャルの署名と形式を検証し、セッションを復元する。
// 有効期限はここでは判定せず、呼び出し側がSession.Validで確認する。
func (c *credentialCodec) decode(credential string) (*model.Session, error) {
	if credential == "" {
		return nil, ErrCredentialInvalid
	}

	registered := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(credential, registered,
		func(token *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return nil, ErrCredentialInvalid
	}
	if registered.Issuer != credentialIssuer || registered.ID == "" || registered.ExpiresAt == nil {
		return nil, ErrCredentialInvalid
	}

	session := &model.Session{
		Token:       registered.ID,
		DisplayName: registered.Subject,
		ExpiresAt:   registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		session.CreatedAt = registered.IssuedAt.Time
	}
	return session, nil
}
