// Package mocks holds gomock doubles for the repository and collaborator
// interfaces in internal/core.
//
// To regenerate after interface changes:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockApplicationRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "app-1").Return(app, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/hiring-api/internal/core JobRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/target/hiring-api/internal/core UserRepository

// ApplicationRepository: Create, GetByID, TransitionStatus, DeleteIfPending, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=application_repository_mock.go github.com/target/hiring-api/internal/core ApplicationRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=rate_limiter_mock.go github.com/target/hiring-api/internal/core RateLimiter
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=offer_generator_mock.go github.com/target/hiring-api/internal/core OfferGenerator
