package content

import (
	"math/rand"
	"testing"
	"time"

	"github.com/sujin/chongmu/internal/model"
)

func publishedPost(id, categoryID string, tags []string, publishedAt time.Time) *model.Post {
	return &model.Post{
		ID:          id,
		Title:       "제목 " + id,
		CategoryID:  categoryID,
		Tags:        tags,
		Status:      model.PostStatusPublished,
		PublishedAt: &publishedAt,
	}
}

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// TestRelated_RanksBySharedTagCount 는 공유 태그 수가 많은 글이 앞서는지 검증한다.
func TestRelated_RanksBySharedTagCount(t *testing.T) {
	source := publishedPost("src", "c1", []string{"경조금", "복리후생", "규정"}, baseTime)
	pool := []*model.Post{
		publishedPost("one-tag", "c1", []string{"경조금"}, baseTime),
		publishedPost("three-tags", "c1", []string{"경조금", "복리후생", "규정"}, baseTime.Add(-48*time.Hour)),
		publishedPost("two-tags", "c1", []string{"복리후생", "규정"}, baseTime.Add(-24*time.Hour)),
	}

	got := Related(source, pool, 3, nil)

	wantOrder := []string{"three-tags", "two-tags", "one-tag"}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

// TestRelated_TieBrokenByRecency 는 동점일 때 최신 글이 앞서는지 검증한다.
func TestRelated_TieBrokenByRecency(t *testing.T) {
	source := publishedPost("src", "c1", []string{"비품"}, baseTime)
	pool := []*model.Post{
		publishedPost("older", "c1", []string{"비품"}, baseTime.Add(-72*time.Hour)),
		publishedPost("newer", "c1", []string{"비품"}, baseTime.Add(-time.Hour)),
	}

	got := Related(source, pool, 2, nil)

	if len(got) != 2 || got[0].ID != "newer" || got[1].ID != "older" {
		t.Errorf("order = %v", postIDs(got))
	}
}

// TestRelated_ExcludesSource 는 결과에 자기 자신이 포함되지 않는지 검증한다.
func TestRelated_ExcludesSource(t *testing.T) {
	source := publishedPost("src", "c1", []string{"규정"}, baseTime)
	pool := []*model.Post{
		source,
		publishedPost("other", "c1", []string{"규정"}, baseTime),
	}

	got := Related(source, pool, 5, nil)

	for _, p := range got {
		if p.ID == "src" {
			t.Error("결과에 자기 자신이 포함되어 있습니다")
		}
	}
}

// TestRelated_BackfillFromOtherCategories 는 동일 카테고리가 부족할 때
// 다른 카테고리에서 무작위로 채워지는지 검증한다.
func TestRelated_BackfillFromOtherCategories(t *testing.T) {
	source := publishedPost("src", "c1", []string{"규정"}, baseTime)
	pool := []*model.Post{
		publishedPost("same", "c1", []string{"규정"}, baseTime),
		publishedPost("other-a", "c2", nil, baseTime),
		publishedPost("other-b", "c3", nil, baseTime),
		publishedPost("other-c", "c2", nil, baseTime),
	}

	rng := rand.New(rand.NewSource(42))
	got := Related(source, pool, 3, rng)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "same" {
		t.Errorf("got[0].ID = %q, 동일 카테고리 글이 먼저여야 합니다", got[0].ID)
	}
	for _, p := range got[1:] {
		if p.CategoryID == "c1" {
			t.Errorf("채움 글 %q 의 카테고리가 c1 입니다", p.ID)
		}
	}
}

// TestRelated_BackfillDeterministicWithSeed 는 같은 시드로 같은 채움 결과가 나오는지 검증한다.
func TestRelated_BackfillDeterministicWithSeed(t *testing.T) {
	source := publishedPost("src", "c1", []string{"규정"}, baseTime)
	makePool := func() []*model.Post {
		return []*model.Post{
			publishedPost("other-a", "c2", nil, baseTime),
			publishedPost("other-b", "c3", nil, baseTime),
			publishedPost("other-c", "c4", nil, baseTime),
			publishedPost("other-d", "c5", nil, baseTime),
		}
	}

	first := Related(source, makePool(), 2, rand.New(rand.NewSource(7)))
	second := Related(source, makePool(), 2, rand.New(rand.NewSource(7)))

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("len = %d, %d, want 2", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("시드 고정 결과가 다릅니다: %v vs %v", postIDs(first), postIDs(second))
		}
	}
}

// TestRelated_NilRNGSkipsBackfill 은 rng 미주입 시 채움 없이 반환되는지 검증한다.
func TestRelated_NilRNGSkipsBackfill(t *testing.T) {
	source := publishedPost("src", "c1", []string{"규정"}, baseTime)
	pool := []*model.Post{
		publishedPost("same", "c1", []string{"규정"}, baseTime),
		publishedPost("other", "c2", nil, baseTime),
	}

	got := Related(source, pool, 4, nil)

	if len(got) != 1 || got[0].ID != "same" {
		t.Errorf("got = %v, want [same]", postIDs(got))
	}
}

// TestRelated_LimitApplied 는 limit 초과분이 잘리는지 검증한다.
func TestRelated_LimitApplied(t *testing.T) {
	source := publishedPost("src", "c1", []string{"비품"}, baseTime)
	var pool []*model.Post
	for i := 0; i < 10; i++ {
		pool = append(pool, publishedPost(
			string(rune('a'+i)), "c1", []string{"비품"},
			baseTime.Add(-time.Duration(i)*time.Hour),
		))
	}

	got := Related(source, pool, 4, nil)

	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}

// TestRelated_EmptyInputs 는 경계 입력을 검증한다.
func TestRelated_EmptyInputs(t *testing.T) {
	if got := Related(nil, nil, 4, nil); got != nil {
		t.Errorf("Related(nil) = %v, want nil", got)
	}
	source := publishedPost("src", "c1", nil, baseTime)
	if got := Related(source, nil, 0, nil); got != nil {
		t.Errorf("Related(limit=0) = %v, want nil", got)
	}
	if got := Related(source, nil, 4, nil); len(got) != 0 {
		t.Errorf("빈 풀에서 %d건이 반환되었습니다", len(got))
	}
}

// TestSharedTagScore 는 공유 태그 수 계산을 검증한다.
func TestSharedTagScore(t *testing.T) {
	a := &model.Post{Tags: []string{"경조금", "복리후생", "규정"}}
	b := &model.Post{Tags: []string{"규정", "비품", "경조금"}}

	if got := SharedTagScore(a, b); got != 2 {
		t.Errorf("SharedTagScore = %d, want 2", got)
	}

	// 대소문자는 구분한다.
	c := &model.Post{Tags: []string{"Notice"}}
	d := &model.Post{Tags: []string{"notice"}}
	if got := SharedTagScore(c, d); got != 0 {
		t.Errorf("SharedTagScore(대소문자) = %d, want 0", got)
	}
}

func postIDs(posts []*model.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
