// Package mocks provides mock implementations of the core ports for tests.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces
// in internal/core. To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockJobRepository(ctrl)
//	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// JobRepository: Create, GetByID, UpdateStatus, ListRecent, Stats
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/prreview-api/internal/core JobRepository

// WorkQueue: Enqueue, Dequeue, Ack
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=work_queue_mock.go github.com/target/prreview-api/internal/core WorkQueue

// SourceProvider and its per-token factory
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=source_provider_mock.go github.com/target/prreview-api/internal/core SourceProvider,SourceProviderFactory

// AnalysisProvider: Analyze
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=analysis_provider_mock.go github.com/target/prreview-api/internal/core AnalysisProvider

// CredentialSealer: Seal, Open
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_sealer_mock.go github.com/target/prreview-api/internal/core CredentialSealer
