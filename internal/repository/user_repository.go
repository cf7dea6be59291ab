package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

type UserListQuery struct {
	Page  int
	Limit int
	Q     string
	//空なら全ステータス
	AccountStatus string
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アカウント状態の変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//アカウント状態だけを更新
	UpdateAccountStatus(ctx context.Context, userID int64, status model.AccountStatus) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	//admin用の一覧
	List(ctx context.Context, q UserListQuery) ([]model.User, int64, error)
}
