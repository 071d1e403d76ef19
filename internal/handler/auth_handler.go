// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/hitokoto/internal/middleware"
	"github.com/hitoshi/hitokoto/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(name string) (*model.Session, string, error)
	Logout(credential string)
	CheckLogin(credential string) model.Identity
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は表示名によるログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Name string `json:"name"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Success  bool   `json:"success"`
	UserName string `json:"userName"`
}

// checkLoginResponse はログイン状態のレスポンス。
type checkLoginResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	UserName string `json:"userName,omitempty"`
}

// Login は表示名でセッションを発行し、クレデンシャルをCookieに設定する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteAPIError(w, newInvalidRequestError())
		return
	}

	session, credential, err := h.service.Login(req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    credential,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Success:  true,
		UserName: session.DisplayName,
	})
}

// CheckLogin は現在のログイン状態を返す。未ログインでもエラーにはしない。
// GET /api/check-login
func (h *AuthHandler) CheckLogin(w http.ResponseWriter, r *http.Request) {
	identity := h.service.CheckLogin(middleware.CredentialFromRequest(r))
	writeJSON(w, http.StatusOK, checkLoginResponse{
		LoggedIn: identity.LoggedIn,
		UserName: identity.Name,
	})
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if credential := middleware.CredentialFromRequest(r); credential != "" {
		h.service.Logout(credential)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// newInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
