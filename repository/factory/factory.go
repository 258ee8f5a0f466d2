package factory

import (
	"context"

	"github.com/kyanome/rag-backend/repository"
	"github.com/kyanome/rag-backend/repository/interfaces"
)

type Factory interface {
	NewSession(ctx context.Context) interfaces.Session
	NewDocumentRepository(session interfaces.Session) (repository.DocumentRepository, error)
	NewDocumentChunkRepository(session interfaces.Session) (repository.DocumentChunkRepository, error)
	NewUserRepository(session interfaces.Session) (repository.UserRepository, error)
	NewSessionRepository(session interfaces.Session) (repository.SessionRepository, error)
}
