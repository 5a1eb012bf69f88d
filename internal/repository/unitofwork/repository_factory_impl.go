package unitofwork

import (
	"context"

	"wellmate-be/pkg/database"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db     *gorm.DB
	schema database.SchemaVersion
}

// NewRepositoryFactory binds the schema version resolved at startup so every
// unit of work builds session repositories for the same column layout.
func NewRepositoryFactory(db *gorm.DB, schema database.SchemaVersion) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:     db,
		schema: schema,
	}
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db, f.schema)
}
