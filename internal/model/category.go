// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Category 는 게시글 분류를 나타낸다. slug 는 컬렉션 내에서 유일하다.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Color       string
	Icon        string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag 는 게시글에 부여되는 태그를 나타낸다. slug 는 컬렉션 내에서 유일하다.
// 게시글과는 post_tags 연결 테이블을 통한 다대다 관계를 가진다.
type Tag struct {
	ID        string
	Name      string
	Slug      string
	Color     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
