// Package content 는 게시글의 연관 글 랭킹, 검색, 본문 파생 처리를 제공한다.
package content

import (
	"math/rand"
	"sort"

	"github.com/sujin/chongmu/internal/model"
)

// Related 는 source 와 연관된 게시글을 limit 건까지 반환한다.
//
// 랭킹 규칙:
//  1. 후보 풀에서 source 자신을 제외한 동일 카테고리 글을 추린다.
//  2. 각 후보의 점수 = source 와 공유하는 태그 수(대소문자 구분 완전 일치).
//  3. (점수 내림차순, 발행일 내림차순) 으로 정렬한다. 동점은 최신 글 우선.
//  4. limit 에 미달하면 나머지 풀(다른 카테고리)에서 비복원 무작위 추출로 채운다.
//
// 무작위 채움은 의도된 비결정 동작이며, rng 주입으로 테스트에서 시드를 고정할 수 있다.
// rng 가 nil 이면 빈 결과 대신 채움 없이 랭킹된 부분만 반환한다.
func Related(source *model.Post, pool []*model.Post, limit int, rng *rand.Rand) []*model.Post {
	if source == nil || limit <= 0 {
		return nil
	}

	sourceTags := make(map[string]struct{}, len(source.Tags))
	for _, tag := range source.Tags {
		sourceTags[tag] = struct{}{}
	}

	var sameCategory []*model.Post
	var others []*model.Post
	for _, candidate := range pool {
		if candidate.ID == source.ID {
			continue
		}
		if candidate.CategoryID != "" && candidate.CategoryID == source.CategoryID {
			sameCategory = append(sameCategory, candidate)
		} else {
			others = append(others, candidate)
		}
	}

	score := func(p *model.Post) int {
		n := 0
		for _, tag := range p.Tags {
			if _, ok := sourceTags[tag]; ok {
				n++
			}
		}
		return n
	}

	sort.SliceStable(sameCategory, func(i, j int) bool {
		si, sj := score(sameCategory[i]), score(sameCategory[j])
		if si != sj {
			return si > sj
		}
		return sameCategory[i].PublishedTime().After(sameCategory[j].PublishedTime())
	})

	result := sameCategory
	if len(result) > limit {
		return result[:limit]
	}

	// 동일 카테고리만으로 부족하면 나머지 풀에서 무작위 비복원 추출로 채운다.
	if len(result) < limit && len(others) > 0 && rng != nil {
		rng.Shuffle(len(others), func(i, j int) {
			others[i], others[j] = others[j], others[i]
		})
		need := limit - len(result)
		if need > len(others) {
			need = len(others)
		}
		result = append(result, others[:need]...)
	}

	return result
}

// SharedTagScore 는 두 게시글이 공유하는 태그 수를 반환한다.
// 점수는 항상 0 이상의 정수다.
func SharedTagScore(a, b *model.Post) int {
	set := make(map[string]struct{}, len(a.Tags))
	for _, tag := range a.Tags {
		set[tag] = struct{}{}
	}
	n := 0
	for _, tag := range b.Tags {
		if _, ok := set[tag]; ok {
			n++
		}
	}
	return n
}
