// Package storage 는 MongoDB GridFS 기반 오브젝트 스토리지를 제공한다.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// connectTimeout 은 MongoDB 접속과 핑의 제한 시간.
const connectTimeout = 10 * time.Second

// MongoClient 는 MongoDB 접속과 데이터베이스 핸들을 보유한다.
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoClient 는 MongoDB 에 접속해 핑으로 도달성을 확인한다.
func NewMongoClient(uri, dbName string) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDB 접속에 실패했습니다: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB 핑에 실패했습니다: %w", err)
	}

	return &MongoClient{
		client:   client,
		database: client.Database(dbName),
	}, nil
}

// Database 는 데이터베이스 핸들을 반환한다.
func (mc *MongoClient) Database() *mongo.Database {
	return mc.database
}

// Close 는 MongoDB 접속을 종료한다.
func (mc *MongoClient) Close(ctx context.Context) error {
	return mc.client.Disconnect(ctx)
}
