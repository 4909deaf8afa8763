package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"communerag/internal/app"
	"communerag/internal/config"
	"communerag/internal/index"
	"communerag/internal/model"
	mysqlClient "communerag/internal/platform/mysql"
	rabbitmqClient "communerag/internal/platform/rabbitmq"
	redisClient "communerag/internal/platform/redis"
	"communerag/internal/repository"
	"communerag/internal/worker"
)

type App struct {
	Config            *config.Config
	MySQL             *gorm.DB
	Redis             *redis.Client
	MQConn            *amqp.Connection
	IndexHolder       *index.Holder
	InteractionWorker *worker.InteractionPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.Interaction{}, &model.APIClient{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	interactionRepo := repository.NewInteractionRepository(mysqlDB)
	interactionWorker := worker.NewInteractionPersistWorker(mqConn, interactionRepo, cfg.RabbitMQ.InteractionQueue)
	if err := interactionWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start interaction worker failed: %w", err)
	}

	authService := app.NewAuthService(
		repository.NewAPIClientRepository(mysqlDB),
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	if err := authService.EnsureBootstrapClient(cfg.Auth.BootstrapClient, cfg.Auth.BootstrapClientKey); err != nil {
		return nil, err
	}

	holder := index.NewHolder()
	loadPersistedIndex(holder, cfg.Index.VectorsPath, cfg.Index.ChunksPath)

	return &App{
		Config:            cfg,
		MySQL:             mysqlDB,
		Redis:             redisCli,
		MQConn:            mqConn,
		IndexHolder:       holder,
		InteractionWorker: interactionWorker,
		StartedAt:         time.Now(),
	}, nil
}

// loadPersistedIndex restores the artifacts of the last build, if any. A
// missing or corrupt index is not fatal at startup; queries fail until a
// rebuild succeeds, which the health endpoint makes visible.
func loadPersistedIndex(holder *index.Holder, vectorsPath, chunksPath string) {
	if _, err := os.Stat(vectorsPath); err != nil {
		log.Printf("INFO: no persisted index at %s, starting without one", vectorsPath)
		return
	}
	idx, err := index.Load(vectorsPath, chunksPath)
	if err != nil {
		log.Printf("WARN: load persisted index failed: %v", err)
		return
	}
	holder.Swap(idx)
	log.Printf("INFO: loaded persisted index, %d chunks, dimension %d", idx.Len(), idx.Dimension())
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.InteractionWorker != nil {
		a.InteractionWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
