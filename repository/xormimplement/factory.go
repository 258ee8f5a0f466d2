package xormimplement

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/interfaces"

	"github.com/sirupsen/logrus"
	"xorm.io/xorm"

	_ "github.com/lib/pq"
)

var once sync.Once
var instance *Factory

type Factory struct {
	// 连接 pg，配置了只读副本时为 EngineGroup
	engine xorm.EngineInterface
}

// 获取一个factory实例
func GetRepositoryFactoryInstance() factory.Factory {
	once.Do(func() {
		cfg := config.GetInstance()
		instance = &Factory{
			engine: openDB(
				cfg.GetString(config.BaseDbXormType),
				cfg.GetString(config.BaseDbXormHost),
				cfg.GetString(config.BaseDbXormPort),
				cfg.GetString(config.BaseDbXormUsername),
				cfg.GetString(config.BaseDbXormName),
				cfg.GetString(config.BaseDbXormPassword),
				cfg.GetString(config.BaseDbXormReplicas),
				cfg.GetBool(config.BaseDbXormShowsql),
				cfg.GetIntOrDefault(config.BaseDbXormMaxOpen, 20),
				cfg.GetIntOrDefault(config.BaseDbXormMaxIdle, 5),
			),
		}
	})
	return instance
}

func buildDSN(host, port, userName, password, name string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		host,
		userName,
		password,
		name,
		port)
}

// 设置xorm的连接参数，replicas 为逗号分隔的 host:port 列表，读请求随机分发到副本
func openDB(dbType, host, port, userName, name, password, replicas string, showSql bool, maxOpen, maxIdle int) xorm.EngineInterface {
	master, err := xorm.NewEngine(dbType, buildDSN(host, port, userName, password, name))
	if err != nil {
		logrus.Errorf("Database connection failed err: %v. Database name: %s", err, name)
		panic(err)
	}
	master.ShowSQL(showSql)
	master.SetMaxOpenConns(maxOpen)
	master.SetMaxIdleConns(maxIdle)

	if strings.TrimSpace(replicas) == "" {
		return master
	}

	var slaves []*xorm.Engine
	for _, addr := range strings.Split(replicas, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}

		parts := strings.SplitN(addr, ":", 2)
		slaveHost, slavePort := parts[0], port
		if len(parts) == 2 {
			slavePort = parts[1]
		}

		slave, err := xorm.NewEngine(dbType, buildDSN(slaveHost, slavePort, userName, password, name))
		if err != nil {
			logrus.Errorf("Replica connection failed err: %v. addr: %s", err, addr)
			panic(err)
		}
		slave.ShowSQL(showSql)
		slave.SetMaxOpenConns(maxOpen)
		slave.SetMaxIdleConns(maxIdle)
		slaves = append(slaves, slave)
	}

	if len(slaves) == 0 {
		return master
	}

	group, err := xorm.NewEngineGroup(master, slaves, xorm.RandomPolicy())
	if err != nil {
		logrus.Errorf("Engine group creation failed err: %v", err)
		panic(err)
	}
	return group
}

// 创建一个会话
func (f *Factory) NewSession(ctx context.Context) interfaces.Session {
	return &Session{Session: f.engine.NewSession().Context(ctx)}
}

// NewDocumentRepository 创建文档仓库
func (f *Factory) NewDocumentRepository(session interfaces.Session) (repository.DocumentRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewDocumentRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}

// NewDocumentChunkRepository 创建文档分块仓库
func (f *Factory) NewDocumentChunkRepository(session interfaces.Session) (repository.DocumentChunkRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewDocumentChunkRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}

// NewUserRepository 创建用户仓库
func (f *Factory) NewUserRepository(session interfaces.Session) (repository.UserRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewUserRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}

// NewSessionRepository 创建会话仓库
func (f *Factory) NewSessionRepository(session interfaces.Session) (repository.SessionRepository, error) {
	if s, ok := session.(*Session); ok {
		return NewSessionRepository(s), nil
	}
	return nil, fmt.Errorf("xorm session 结构解析失败")
}
