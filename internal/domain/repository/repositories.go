package repository

// Repositories groups every repository used by the use cases
type Repositories struct {
	User      UserRepository
	Token     TokenRepository
	AuditLog  AuditLogRepository
	Blacklist BlacklistTier
	External  ExternalAPIClient
}

func NewRepositories(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	auditLogRepo AuditLogRepository,
	blacklistRepo BlacklistTier,
	externalClient ExternalAPIClient,
) *Repositories {
	return &Repositories{
		User:      userRepo,
		Token:     tokenRepo,
		AuditLog:  auditLogRepo,
		Blacklist: blacklistRepo,
		External:  externalClient,
	}
}
