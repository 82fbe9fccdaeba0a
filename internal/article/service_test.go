package article

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/knowvia/knowvia-server/internal/model"
)

func assertAPIErrorCode(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", want)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != want {
		t.Errorf("error code = %q, want %q", apiErr.Code, want)
	}
}

// newTestService は時刻を1秒ずつ進めるServiceを返す。作成順がそのまま新旧順になる。
func newTestService(repo *mockArticleRepo, cfg ServiceConfig, rec EventRecorder) *Service {
	svc := NewService(repo, cfg, rec)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestService_Create_ThenGet(t *testing.T) {
	repo := newMockArticleRepo()
	rec := &mockRecorder{}
	svc := newTestService(repo, ServiceConfig{}, rec)
	ctx := context.Background()

	payload := rawFields(t, `{"title":"Go入門","content":"本文","category":"Tech","tags":["go"]}`)
	id, err := svc.Create(ctx, "owner@example.com", payload)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !model.IsValidID(id) {
		t.Errorf("Create() id = %q, want UUID", id)
	}

	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserEmail != "owner@example.com" {
		t.Errorf("UserEmail = %q, want %q", got.UserEmail, "owner@example.com")
	}
	if got.Category == nil || *got.Category != "Tech" {
		t.Errorf("Category = %v, want Tech", got.Category)
	}
	if string(got.Fields["title"]) != `"Go入門"` {
		t.Errorf("Fields[title] = %s", got.Fields["title"])
	}
	if string(got.Fields["tags"]) != `["go"]` {
		t.Errorf("Fields[tags] = %s", got.Fields["tags"])
	}
	if string(got.Fields["category"]) != `"Tech"` {
		t.Errorf("Fields[category] = %s, want \"Tech\"", got.Fields["category"])
	}
	if len(got.LikedBy) != 0 {
		t.Errorf("LikedBy = %v, want empty", got.LikedBy)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if rec.created != 1 {
		t.Errorf("RecordArticleCreated calls = %d, want 1", rec.created)
	}
}

func TestService_Create_IgnoresReservedFields(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	payload := rawFields(t, `{"_id":"x","userEmail":"evil@example.com","likedBy":["a","a"],"createdAt":"2000-01-01","title":"t"}`)
	id, err := svc.Create(ctx, "owner@example.com", payload)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, _ := svc.Get(ctx, id)
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.UserEmail != "owner@example.com" {
		t.Errorf("UserEmail = %q, want owner from identity", got.UserEmail)
	}
	if len(got.LikedBy) != 0 {
		t.Errorf("LikedBy = %v, want empty", got.LikedBy)
	}
	for _, key := range []string{"_id", "userEmail", "likedBy", "createdAt"} {
		if _, ok := got.Fields[key]; ok {
			t.Errorf("予約フィールド %q がFieldsに残っている", key)
		}
	}
}

func TestService_Create_RejectsNonStringCategory(t *testing.T) {
	svc := newTestService(newMockArticleRepo(), ServiceConfig{}, nil)

	_, err := svc.Create(context.Background(), "owner@example.com", rawFields(t, `{"category":42}`))
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestService_Create_KeepsCategoryAsSent(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantField    string
		wantCategory *string
	}{
		{name: "nullはnullのまま", payload: `{"title":"t","category":null}`, wantField: "null"},
		{name: "空文字は空文字のまま", payload: `{"title":"t","category":""}`, wantField: `""`, wantCategory: strPtr("")},
		{name: "キーなし", payload: `{"title":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockArticleRepo(), ServiceConfig{}, nil)
			ctx := context.Background()

			id, err := svc.Create(ctx, "owner@example.com", rawFields(t, tt.payload))
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			got, _ := svc.Get(ctx, id)

			raw, ok := got.Fields["category"]
			if tt.wantField == "" {
				if ok {
					t.Errorf("Fields[category] = %s, want absent", raw)
				}
			} else if string(raw) != tt.wantField {
				t.Errorf("Fields[category] = %s, want %s", raw, tt.wantField)
			}

			switch {
			case tt.wantCategory == nil && got.Category != nil:
				t.Errorf("Category = %q, want nil", *got.Category)
			case tt.wantCategory != nil && (got.Category == nil || *got.Category != *tt.wantCategory):
				t.Errorf("Category = %v, want %q", got.Category, *tt.wantCategory)
			}
		})
	}
}

func TestService_Update_NullCategoryClearsFilter(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "owner@example.com", rawFields(t, `{"title":"t","category":"Tech"}`))

	if _, err := svc.Update(ctx, id, "owner@example.com", rawFields(t, `{"category":null}`)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := svc.Get(ctx, id)
	if got.Category != nil {
		t.Errorf("Category = %q, want nil", *got.Category)
	}
	if string(got.Fields["category"]) != "null" {
		t.Errorf("Fields[category] = %s, want null", got.Fields["category"])
	}
	if list, _ := svc.List(ctx, "Tech"); len(list) != 0 {
		t.Errorf("len(List(Tech)) = %d, want 0", len(list))
	}
}

func TestService_Update_WithoutCategoryKeepsFilter(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "owner@example.com", rawFields(t, `{"title":"t","category":"Tech"}`))

	var gotPatch model.ArticlePatch
	repo.updateFn = func(ctx context.Context, id string, patch model.ArticlePatch) (*model.UpdateResult, error) {
		gotPatch = patch
		return &model.UpdateResult{MatchedCount: 1}, nil
	}

	if _, err := svc.Update(ctx, id, "owner@example.com", rawFields(t, `{"title":"new"}`)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if gotPatch.SetCategory {
		t.Error("categoryを含まない更新でSetCategoryがtrueになった")
	}
}

func strPtr(s string) *string { return &s }

func TestService_Create_RepoError(t *testing.T) {
	repo := newMockArticleRepo()
	repo.createFn = func(ctx context.Context, a *model.Article) error {
		return errors.New("connection refused")
	}
	rec := &mockRecorder{}
	svc := newTestService(repo, ServiceConfig{}, rec)

	if _, err := svc.Create(context.Background(), "o@example.com", nil); err == nil {
		t.Fatal("expected error")
	}
	if rec.created != 0 {
		t.Errorf("失敗時にイベントが記録された: %d", rec.created)
	}
}

func TestService_List_CategoryFilter(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	idA, _ := svc.Create(ctx, "a@example.com", rawFields(t, `{"category":"Tech"}`))
	idB, _ := svc.Create(ctx, "b@example.com", rawFields(t, `{"category":"tech"}`))
	svc.Create(ctx, "c@example.com", rawFields(t, `{"category":"Technology"}`))

	got, err := svc.List(ctx, "Tech")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(List(Tech)) = %d, want 2", len(got))
	}
	// 新しい順
	if got[0].ID != idB || got[1].ID != idA {
		t.Errorf("List(Tech) = [%s %s], want [%s %s]", got[0].ID, got[1].ID, idB, idA)
	}

	all, _ := svc.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("len(List()) = %d, want 3", len(all))
	}
}

func TestService_ListByOwner(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	svc.Create(ctx, "a@example.com", nil)
	svc.Create(ctx, "b@example.com", nil)
	svc.Create(ctx, "a@example.com", nil)

	got, err := svc.ListByOwner(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(ListByOwner()) = %d, want 2", len(got))
	}
	for _, a := range got {
		if a.UserEmail != "a@example.com" {
			t.Errorf("ListByOwner() returned article of %q", a.UserEmail)
		}
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := newTestService(newMockArticleRepo(), ServiceConfig{}, nil)

	t.Run("存在しないID", func(t *testing.T) {
		_, err := svc.Get(context.Background(), model.NewID())
		assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)
	})

	t.Run("形式が不正なIDも未検出として扱う", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "not-a-valid-id")
		assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)
	})
}

func TestService_Update(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "owner@example.com", rawFields(t, `{"title":"old","category":"Tech"}`))

	// 所有者チェック無効時は他人でも更新できる
	result, err := svc.Update(ctx, id, "someone@example.com", rawFields(t, `{"title":"new","category":"Science","userEmail":"x@example.com"}`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if result.MatchedCount != 1 {
		t.Errorf("MatchedCount = %d, want 1", result.MatchedCount)
	}

	got, _ := svc.Get(ctx, id)
	if string(got.Fields["title"]) != `"new"` {
		t.Errorf("Fields[title] = %s, want \"new\"", got.Fields["title"])
	}
	if got.Category == nil || *got.Category != "Science" {
		t.Errorf("Category = %v, want Science", got.Category)
	}
	if string(got.Fields["category"]) != `"Science"` {
		t.Errorf("Fields[category] = %s, want \"Science\"", got.Fields["category"])
	}
	if got.UserEmail != "owner@example.com" {
		t.Errorf("所有者が変更された: %q", got.UserEmail)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := newTestService(newMockArticleRepo(), ServiceConfig{}, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, model.NewID(), "a@example.com", rawFields(t, `{"title":"x"}`))
	assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)

	_, err = svc.Update(ctx, "bad-id", "a@example.com", rawFields(t, `{"title":"x"}`))
	assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)
}

func TestService_EnforceOwnership(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{EnforceOwnership: true}, nil)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "owner@example.com", rawFields(t, `{"title":"t"}`))

	t.Run("所有者以外の更新は拒否", func(t *testing.T) {
		_, err := svc.Update(ctx, id, "other@example.com", rawFields(t, `{"title":"x"}`))
		assertAPIErrorCode(t, err, model.ErrCodeForbidden)
	})

	t.Run("所有者以外の削除は拒否", func(t *testing.T) {
		_, err := svc.Delete(ctx, id, "other@example.com")
		assertAPIErrorCode(t, err, model.ErrCodeForbidden)
	})

	t.Run("所有者は更新と削除ができる", func(t *testing.T) {
		if _, err := svc.Update(ctx, id, "owner@example.com", rawFields(t, `{"title":"x"}`)); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if _, err := svc.Delete(ctx, id, "owner@example.com"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})
}

func TestService_Delete_ThenGetIsNotFound(t *testing.T) {
	repo := newMockArticleRepo()
	svc := newTestService(repo, ServiceConfig{}, nil)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "owner@example.com", nil)

	result, err := svc.Delete(ctx, id, "owner@example.com")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if result.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", result.DeletedCount)
	}

	_, err = svc.Get(ctx, id)
	assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)

	_, err = svc.Delete(ctx, id, "owner@example.com")
	assertAPIErrorCode(t, err, model.ErrCodeArticleNotFound)
}
