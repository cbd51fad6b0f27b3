package repository

import (
	"time"

	"gorm.io/gorm"

	domainrepo "github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
)

// InitRepositories wires the GORM backed repositories
func InitRepositories(database *gorm.DB, externalClient domainrepo.ExternalAPIClient, now func() time.Time) *domainrepo.Repositories {
	var blacklist domainrepo.BlacklistTier
	if database != nil {
		blacklist = NewBlacklistRepository(database, now)
	}

	return domainrepo.NewRepositories(
		NewUserRepository(database),
		NewTokenRepository(database),
		NewAuditLogRepository(database),
		blacklist,
		externalClient,
	)
}
