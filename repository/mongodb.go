package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

const (
	// 集合名
	ApiOperationLogsCollection = "apiOperationLogs"
)

// MongoAuditStore 基于MongoDB的操作日志存储
type MongoAuditStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoAuditStore 连接MongoDB并准备操作日志集合
func NewMongoAuditStore(ctx context.Context, uri, dbName string) (*MongoAuditStore, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	store := &MongoAuditStore{client: client, db: client.Database(dbName)}
	if err := store.ensureIndexes(ctx); err != nil {
		utils.Logger.Warn().Err(err).Msg("创建操作日志索引失败")
	}
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")
	return store, nil
}

func (s *MongoAuditStore) collection() *mongo.Collection {
	return s.db.Collection(ApiOperationLogsCollection)
}

func (s *MongoAuditStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "operationTime", Value: -1}}},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
	})
	return err
}

// Save 保存一条操作日志，网络类错误会重试
func (s *MongoAuditStore) Save(ctx context.Context, log *models.OperationLog) error {
	_, err := ExecuteDbOperation(func() (interface{}, error) {
		return s.collection().InsertOne(ctx, log)
	}, 3)
	return err
}

// Recent 按时间倒序返回最近的操作日志
func (s *MongoAuditStore) Recent(ctx context.Context, limit int64) ([]models.OperationLog, error) {
	opts := options.Find().SetSort(bson.M{"operationTime": -1}).SetLimit(limit)
	cursor, err := s.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("查询操作日志失败: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []models.OperationLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("解析操作日志失败: %w", err)
	}
	return logs, nil
}

// Purge 删除 before 之前的操作日志
func (s *MongoAuditStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := ExecuteDbOperation(func() (interface{}, error) {
		return s.collection().DeleteMany(ctx, bson.M{"operationTime": bson.M{"$lt": before}})
	}, 3)
	if err != nil {
		return 0, fmt.Errorf("清理操作日志失败: %w", err)
	}
	return res.(*mongo.DeleteResult).DeletedCount, nil
}

// Close 关闭MongoDB连接
func (s *MongoAuditStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
		return err
	}
	utils.Logger.Info().Msg("已断开MongoDB连接")
	return nil
}

// ExecuteDbOperation 执行数据库操作，提供错误处理和重试机制
func ExecuteDbOperation(operation func() (interface{}, error), retries int) (interface{}, error) {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		// 延迟后重试
		if i < retries-1 {
			time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
		}
	}

	return nil, lastErr
}

// MongoDB可重试错误代码
var retryableCodes = map[int32]bool{
	6:     true, // HostUnreachable
	7:     true, // HostNotFound
	89:    true, // NetworkTimeout
	91:    true, // ShutdownInProgress
	189:   true, // PrimarySteppedDown
	10107: true, // NotMaster
	13436: true, // NotMasterNoSlaveOk
	11600: true, // InterruptedAtShutdown
	11602: true, // InterruptedDueToReplStateChange
	10058: true, // ConnectionReset
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}
	return isNetworkError(err)
}

var networkErrors = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"no reachable servers",
	"timeout",
	"context deadline exceeded",
	"server selection error",
}

// isNetworkError 检查是否是网络错误
func isNetworkError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, ne := range networkErrors {
		if strings.Contains(msg, ne) {
			return true
		}
	}
	return false
}
