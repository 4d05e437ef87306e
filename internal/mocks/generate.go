// Package mocks provides gomock-generated mocks for the repository
// interfaces in internal/core.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockJobRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "j1").Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_repository_mock.go github.com/crewdeck/crewdeck/internal/core ProfileRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/crewdeck/crewdeck/internal/core JobRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=time_entry_repository_mock.go github.com/crewdeck/crewdeck/internal/core TimeEntryRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_repository_mock.go github.com/crewdeck/crewdeck/internal/core CredentialRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=client_repository_mock.go github.com/crewdeck/crewdeck/internal/core ClientRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=file_repository_mock.go github.com/crewdeck/crewdeck/internal/core FileRepository
