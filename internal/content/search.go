package content

import (
	"sort"
	"strings"

	"github.com/sujin/chongmu/internal/model"
)

// Search 는 자유 텍스트 질의로 게시글 풀을 필터링하고 순위를 매긴다.
//
// 매칭 규칙:
//   - 공백 제거 후 빈 질의는 풀을 그대로 반환한다(항등 통과).
//   - 소문자화한 질의가 제목/요약/본문/카테고리명/태그 중 하나에
//     부분 문자열로 포함되면 매칭이다(필드 간 OR, 필드 가중치 없음).
//   - 토큰화, 어간 추출, 퍼지 매칭은 하지 않는다. 여러 단어 질의는
//     하나의 리터럴 부분 문자열로 취급한다.
//
// 순위 규칙: 제목에 질의가 포함된 글이 그 외 필드로만 매칭된 글보다 앞선다.
// 같은 버킷 안에서는 발행일 내림차순.
func Search(query string, pool []*model.Post) []*model.Post {
	if strings.TrimSpace(query) == "" {
		return pool
	}

	q := strings.ToLower(query)

	var titleMatches []*model.Post
	var otherMatches []*model.Post
	for _, post := range pool {
		if strings.Contains(strings.ToLower(post.Title), q) {
			titleMatches = append(titleMatches, post)
			continue
		}
		if matchesOtherFields(post, q) {
			otherMatches = append(otherMatches, post)
		}
	}

	byRecency := func(posts []*model.Post) {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].PublishedTime().After(posts[j].PublishedTime())
		})
	}
	byRecency(titleMatches)
	byRecency(otherMatches)

	return append(titleMatches, otherMatches...)
}

// matchesOtherFields 는 제목 외 필드(요약/본문/카테고리명/태그)에 대한
// 부분 문자열 매칭을 판정한다.
func matchesOtherFields(post *model.Post, q string) bool {
	if strings.Contains(strings.ToLower(post.Excerpt), q) {
		return true
	}
	if strings.Contains(strings.ToLower(post.Body), q) {
		return true
	}
	if strings.Contains(strings.ToLower(post.CategoryName), q) {
		return true
	}
	for _, tag := range post.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
