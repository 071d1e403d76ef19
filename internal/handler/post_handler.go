package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/hitokoto/internal/middleware"
	"github.com/hitoshi/hitokoto/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	SubmitPost(ctx context.Context, credential, rawContent string) (*model.Post, error)
	GetTimeline(ctx context.Context) ([]model.DisplayPost, error)
	ToDisplay(p *model.Post) model.DisplayPost
}

// PostHandler は投稿とタイムラインのHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// createPostRequest は投稿リクエストのボディ。
type createPostRequest struct {
	Content string `json:"content"`
}

// createPostResponse は投稿成功時のレスポンス。
type createPostResponse struct {
	Success bool              `json:"success"`
	Post    model.DisplayPost `json:"post"`
}

// listPostsResponse はタイムラインのレスポンス。
type listPostsResponse struct {
	Posts []model.DisplayPost `json:"posts"`
}

// CreatePost はログイン中のユーザーとして投稿を作成する。
// 空ボディは空の投稿内容として扱い、未ログインなら常に401を返す。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if _, authErr := middleware.UserNameFromContext(r.Context()); authErr != nil {
			middleware.WriteAPIError(w, model.NewUnauthorizedError())
			return
		}
		middleware.WriteAPIError(w, newInvalidRequestError())
		return
	}

	post, err := h.service.SubmitPost(r.Context(), middleware.CredentialFromRequest(r), req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPostResponse{
		Success: true,
		Post:    h.service.ToDisplay(post),
	})
}

// ListPosts は新しい順のタイムラインを返す。認証は不要。
// GET /api/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetTimeline(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if posts == nil {
		posts = []model.DisplayPost{}
	}

	writeJSON(w, http.StatusOK, listPostsResponse{Posts: posts})
}
