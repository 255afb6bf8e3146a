package service

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/folio/internal/db"
)

func createTestPost(t *testing.T, svc *PostService, input PostInput) *db.Post {
	t.Helper()
	post, err := svc.Create(input)
	if err != nil {
		t.Fatalf("create post %s: %v", input.Slug, err)
	}
	return post
}

func TestPostService_CreateAppliesDefaultsAndKeepsTagOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	created := createTestPost(t, svc, PostInput{
		Slug:    "hello-world",
		Title:   "Hello World",
		Content: "# Hello",
		Tags:    []string{"go", "sqlite", "alpha", "go-2"},
	})

	post, err := svc.GetBySlug("hello-world")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if post.ID != created.ID {
		t.Fatalf("expected id %d, got %d", created.ID, post.ID)
	}
	want := []string{"go", "sqlite", "alpha", "go-2"}
	if !reflect.DeepEqual([]string(post.Tags), want) {
		t.Fatalf("expected tags %v, got %v", want, post.Tags)
	}
	if post.Status != db.PostStatusDraft {
		t.Fatalf("expected draft status, got %q", post.Status)
	}
	if post.Category != db.DefaultCategory {
		t.Fatalf("expected default category, got %q", post.Category)
	}
	if post.Excerpt != "" || post.FeaturedImage != nil || post.PublishDate != nil || post.Views != 0 {
		t.Fatalf("unexpected defaults: %+v", post)
	}
	if post.CreatedAt == "" || post.UpdatedAt == "" {
		t.Fatalf("expected server-assigned timestamps, got %+v", post)
	}
}

func TestPostService_CreateDuplicateSlugFails(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	createTestPost(t, svc, PostInput{Slug: "dup", Title: "First"})
	_, err := svc.Create(PostInput{Slug: "dup", Title: "Second"})
	if err == nil {
		t.Fatalf("expected duplicate slug to fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestPostService_GetMissingReturnsSentinel(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	if _, err := svc.GetBySlug("missing"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.GetByID(404); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Update(404, PostUpdate{Title: strPtr("x")}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound on update, got %v", err)
	}
}

func TestPostService_UpdateTitleOnlyLeavesOtherFields(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	before := createTestPost(t, svc, PostInput{
		Slug:        "partial",
		Title:       "Original",
		Excerpt:     "An excerpt",
		Content:     "Body text",
		Category:    "Notes",
		Tags:        []string{"b", "a"},
		CoverImage:  strPtr("/uploads/cover.png"),
		Status:      db.PostStatusPublished,
		PublishDate: strPtr("2024-05-01"),
	})
	if err := svc.IncrementViews(before.ID); err != nil {
		t.Fatalf("increment views: %v", err)
	}
	before, _ = svc.GetByID(before.ID)

	time.Sleep(10 * time.Millisecond)

	after, err := svc.Update(before.ID, PostUpdate{Title: strPtr("X")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if after.Title != "X" {
		t.Fatalf("expected title X, got %q", after.Title)
	}
	if after.UpdatedAt <= before.UpdatedAt {
		t.Fatalf("expected updated_at to advance: before=%s after=%s", before.UpdatedAt, after.UpdatedAt)
	}

	expected := *before
	expected.Title = "X"
	expected.UpdatedAt = after.UpdatedAt
	if !reflect.DeepEqual(expected, *after) {
		t.Fatalf("unexpected changes:\nwant %+v\ngot  %+v", expected, *after)
	}
}

func TestPostService_UpdateClearsNullableFields(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	post := createTestPost(t, svc, PostInput{
		Slug:        "nullable",
		Title:       "Nullable",
		CoverImage:  strPtr("/uploads/a.png"),
		PublishDate: strPtr("2024-01-01"),
	})

	tags := []string{}
	updated, err := svc.Update(post.ID, PostUpdate{
		CoverImage: Some[*string](nil),
		Tags:       &tags,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FeaturedImage != nil {
		t.Fatalf("expected cover cleared, got %v", *updated.FeaturedImage)
	}
	if updated.PublishDate == nil || *updated.PublishDate != "2024-01-01" {
		t.Fatalf("unset publish date must be kept, got %v", updated.PublishDate)
	}
	if len(updated.Tags) != 0 {
		t.Fatalf("expected empty tags, got %v", updated.Tags)
	}
}

func TestPostService_ListOrderingAndPagination(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	createTestPost(t, svc, PostInput{Slug: "older", Title: "Older", Status: db.PostStatusPublished, PublishDate: strPtr("2024-01-01")})
	createTestPost(t, svc, PostInput{Slug: "newer", Title: "Newer", Status: db.PostStatusPublished, PublishDate: strPtr("2024-03-01")})
	createTestPost(t, svc, PostInput{Slug: "undated", Title: "Undated"})

	all, err := svc.List(PostFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := slugsOf(all); !reflect.DeepEqual(got, []string{"newer", "older", "undated"}) {
		t.Fatalf("unexpected order %v", got)
	}

	published, err := svc.List(PostFilter{Status: db.PostStatusPublished})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(published))
	}

	tests := []struct {
		name   string
		filter PostFilter
		want   []string
	}{
		{name: "offset ignored without limit", filter: PostFilter{Offset: 1}, want: []string{"newer", "older", "undated"}},
		{name: "limit only", filter: PostFilter{Limit: 2}, want: []string{"newer", "older"}},
		{name: "limit with offset", filter: PostFilter{Limit: 1, Offset: 1}, want: []string{"older"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := svc.List(tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if got := slugsOf(posts); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPostService_IncrementViewsConcurrently(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	post := createTestPost(t, svc, PostInput{Slug: "popular", Title: "Popular"})

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.IncrementViews(post.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	reloaded, err := svc.GetByID(post.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Views != workers {
		t.Fatalf("expected %d views, got %d", workers, reloaded.Views)
	}
}

func TestPostService_SearchOnlyPublished(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	createTestPost(t, svc, PostInput{Slug: "hidden", Title: "Hidden", Content: "mentions nonexistent-term-xyz here"})

	results, err := svc.Search(`"nonexistent-term-xyz"`)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("drafts must not be searchable, got %v", slugsOf(results))
	}

	createTestPost(t, svc, PostInput{Slug: "visible", Title: "Visible", Content: "also nonexistent-term-xyz", Status: db.PostStatusPublished})
	results, err = svc.Search(`"nonexistent-term-xyz"`)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := slugsOf(results); !reflect.DeepEqual(got, []string{"visible"}) {
		t.Fatalf("expected only published match, got %v", got)
	}
}

func TestPostService_SearchFollowsUpdatesAndDeletes(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	post := createTestPost(t, svc, PostInput{Slug: "fts", Title: "Gophers", Content: "badger", Status: db.PostStatusPublished, Tags: []string{"wildlife"}})

	if results, _ := svc.Search("wildlife"); len(results) != 1 {
		t.Fatalf("expected tag to be indexed, got %d results", len(results))
	}

	if _, err := svc.Update(post.ID, PostUpdate{Content: strPtr("otter")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if results, _ := svc.Search("badger"); len(results) != 0 {
		t.Fatalf("stale content still indexed")
	}
	if results, _ := svc.Search("otter"); len(results) != 1 {
		t.Fatalf("new content not indexed")
	}

	if err := svc.Delete(post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if results, _ := svc.Search("otter"); len(results) != 0 {
		t.Fatalf("deleted post still indexed")
	}
	if _, err := svc.GetByID(post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}
}

func TestPostService_SearchQueryErrors(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	results, err := svc.Search("   ")
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty result for blank query, got %v", results)
	}

	// 空库时 MATCH 也必须执行
	if _, err := svc.Search("AND OR"); !errors.Is(err, ErrInvalidSearchQuery) {
		t.Fatalf("empty store: expected ErrInvalidSearchQuery, got %v", err)
	}

	createTestPost(t, svc, PostInput{Slug: "draft-only", Title: "Draft", Content: "hidden words", Status: db.PostStatusDraft})
	if _, err := svc.Search("AND OR"); !errors.Is(err, ErrInvalidSearchQuery) {
		t.Fatalf("draft-only store: expected ErrInvalidSearchQuery, got %v", err)
	}

	createTestPost(t, svc, PostInput{Slug: "published", Title: "Published", Content: "visible words", Status: db.PostStatusPublished})
	for _, query := range []string{"AND OR", `"abc`, "*"} {
		t.Run(query, func(t *testing.T) {
			if _, err := svc.Search(query); !errors.Is(err, ErrInvalidSearchQuery) {
				t.Fatalf("expected ErrInvalidSearchQuery for %q, got %v", query, err)
			}
		})
	}

	results, err = svc.Search("visible")
	if err != nil || len(results) != 1 || results[0].Slug != "published" {
		t.Fatalf("valid query after errors: results=%v err=%v", results, err)
	}
}

func TestPostService_SearchCapsResults(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	for i := 0; i < searchLimit+5; i++ {
		createTestPost(t, svc, PostInput{
			Slug:    "bulk-" + string(rune('a'+i)),
			Title:   "Bulk",
			Content: "repeated keyword",
			Status:  db.PostStatusPublished,
		})
	}
	results, err := svc.Search("keyword")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != searchLimit {
		t.Fatalf("expected %d results, got %d", searchLimit, len(results))
	}
}

func TestPostService_CategoriesAndTags(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	createTestPost(t, svc, PostInput{Slug: "p1", Title: "P1", Category: "Go", Tags: []string{"web", "db"}, Status: db.PostStatusPublished})
	createTestPost(t, svc, PostInput{Slug: "p2", Title: "P2", Category: "Go", Tags: []string{"db"}, Status: db.PostStatusPublished})
	createTestPost(t, svc, PostInput{Slug: "p3", Title: "P3", Category: "Life", Tags: []string{"travel"}, Status: db.PostStatusPublished})
	createTestPost(t, svc, PostInput{Slug: "p4", Title: "P4", Category: "Drafts", Tags: []string{"db", "secret"}})

	categories, err := svc.Categories()
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	wantCategories := []CategoryCount{{Category: "Go", Count: 2}, {Category: "Life", Count: 1}}
	if !reflect.DeepEqual(categories, wantCategories) {
		t.Fatalf("expected %v, got %v", wantCategories, categories)
	}

	tags, err := svc.Tags()
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	wantTags := []TagCount{{Tag: "db", Count: 2}, {Tag: "web", Count: 1}, {Tag: "travel", Count: 1}}
	if !reflect.DeepEqual(tags, wantTags) {
		t.Fatalf("expected %v, got %v", wantTags, tags)
	}

	goPosts, err := svc.GetByCategory("Go")
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(goPosts) != 2 {
		t.Fatalf("expected 2 posts in Go, got %d", len(goPosts))
	}
	if drafts, _ := svc.GetByCategory("Drafts"); len(drafts) != 0 {
		t.Fatalf("draft posts must not be listed by category")
	}
}

func TestPostService_CountAndRelated(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	primary := createTestPost(t, svc, PostInput{Slug: "main", Title: "Main", Category: "Go", Status: db.PostStatusPublished})
	createTestPost(t, svc, PostInput{Slug: "sibling", Title: "Sibling", Category: "Go", Status: db.PostStatusPublished})
	createTestPost(t, svc, PostInput{Slug: "draft", Title: "Draft", Category: "Go"})

	total, err := svc.Count("")
	if err != nil || total != 3 {
		t.Fatalf("expected 3 posts, got %d (%v)", total, err)
	}
	published, err := svc.Count(db.PostStatusPublished)
	if err != nil || published != 2 {
		t.Fatalf("expected 2 published posts, got %d (%v)", published, err)
	}

	related, err := svc.Related(primary, 3)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if got := slugsOf(related); !reflect.DeepEqual(got, []string{"sibling"}) {
		t.Fatalf("unexpected related posts %v", got)
	}

	if err := svc.IncrementViews(primary.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	views, err := svc.TotalViews()
	if err != nil || views != 1 {
		t.Fatalf("expected 1 total view, got %d (%v)", views, err)
	}
}

func slugsOf(posts []db.Post) []string {
	out := make([]string, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.Slug)
	}
	return out
}
