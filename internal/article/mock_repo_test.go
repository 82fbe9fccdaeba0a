package article

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/knowvia/knowvia-server/internal/model"
)

// mockArticleRepo はテスト用のインメモリArticleRepository。
// xxxFnが設定されている場合はそちらを優先する。
type mockArticleRepo struct {
	mu       sync.Mutex
	articles map[string]*model.Article

	createFn     func(ctx context.Context, a *model.Article) error
	findByIDFn   func(ctx context.Context, id string) (*model.Article, error)
	updateFn     func(ctx context.Context, id string, patch model.ArticlePatch) (*model.UpdateResult, error)
	deleteFn     func(ctx context.Context, id string) (*model.DeleteResult, error)
	toggleLikeFn func(ctx context.Context, id, user string) (*model.LikeResult, error)
}

func newMockArticleRepo() *mockArticleRepo {
	return &mockArticleRepo{articles: make(map[string]*model.Article)}
}

func (m *mockArticleRepo) Create(ctx context.Context, a *model.Article) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.ID] = a
	return nil
}

func (m *mockArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (m *mockArticleRepo) List(_ context.Context, category string) ([]*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Article
	for _, a := range m.articles {
		if category == "" || (a.Category != nil && strings.EqualFold(*a.Category, category)) {
			out = append(out, a)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *mockArticleRepo) ListByOwner(_ context.Context, ownerEmail string) ([]*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Article
	for _, a := range m.articles {
		if a.UserEmail == ownerEmail {
			out = append(out, a)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *mockArticleRepo) Update(ctx context.Context, id string, patch model.ArticlePatch) (*model.UpdateResult, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	if patch.SetCategory {
		a.Category = patch.Category
	}
	for k, v := range patch.Fields {
		a.Fields[k] = v
	}
	return &model.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockArticleRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return &model.DeleteResult{}, nil
	}
	delete(m.articles, id)
	return &model.DeleteResult{DeletedCount: 1}, nil
}

func (m *mockArticleRepo) ToggleLike(ctx context.Context, id, user string) (*model.LikeResult, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, id, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	for i, u := range a.LikedBy {
		if u == user {
			a.LikedBy = append(a.LikedBy[:i], a.LikedBy[i+1:]...)
			return &model.LikeResult{Liked: false}, nil
		}
	}
	a.LikedBy = append(a.LikedBy, user)
	return &model.LikeResult{Liked: true}, nil
}

func sortNewestFirst(articles []*model.Article) {
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
}

// mockRecorder はイベント記録の呼び出し回数を数える。
type mockRecorder struct {
	created  int
	liked    int
	disliked int
}

func (r *mockRecorder) RecordArticleCreated() { r.created++ }

func (r *mockRecorder) RecordLikeToggled(liked bool) {
	if liked {
		r.liked++
	} else {
		r.disliked++
	}
}

func rawFields(t interface{ Fatalf(string, ...any) }, s string) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("invalid test payload %q: %v", s, err)
	}
	return m
}
