package factory

import (
	"sync"

	"github.com/kyanome/rag-backend/repository/factory"
	"github.com/kyanome/rag-backend/repository/xormimplement"
	"github.com/kyanome/rag-backend/service/admin"
	"github.com/kyanome/rag-backend/service/auth"
	"github.com/kyanome/rag-backend/service/document"
	"github.com/kyanome/rag-backend/service/rag"
	"github.com/kyanome/rag-backend/service/search"
)

var instance *Factory
var once sync.Once

// 创建
type Factory struct {
	repositoryFactory factory.Factory
}

// 实例化instance
func init() {
	once.Do(func() {
		instance = &Factory{repositoryFactory: xormimplement.GetRepositoryFactoryInstance()}
	})
}

// 单例模式，
func GetServiceFactory() *Factory {
	return instance
}

// NewAuthService 获取认证服务
func (f *Factory) NewAuthService() *auth.Service {
	return auth.NewService(f.repositoryFactory)
}

// NewDocumentService 获取文档服务
func (f *Factory) NewDocumentService() *document.Service {
	return document.NewService(f.repositoryFactory)
}

// NewSearchService 获取检索服务
func (f *Factory) NewSearchService() *search.Service {
	return search.NewService(f.repositoryFactory)
}

// NewRagService 获取 RAG 问答服务
func (f *Factory) NewRagService() *rag.Service {
	return rag.NewService(f.repositoryFactory, f.NewSearchService())
}

// NewAdminService 获取用户管理服务
func (f *Factory) NewAdminService() *admin.Service {
	return admin.NewService(f.repositoryFactory)
}
