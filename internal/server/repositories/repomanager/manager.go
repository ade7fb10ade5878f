package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/studyshare/internal/dbx"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Files(db dbx.DBTX) files.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
