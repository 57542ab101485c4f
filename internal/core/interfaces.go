package core

import (
	"context"
	"time"

	"github.com/target/prreview-api/internal/domain/model"
)

// This file contains the port definitions (hexagonal architecture) between the
// service layer and its adapters. Services depend on these interfaces, never on
// concrete stores, queues or providers.

// JobRepository defines the job store contract.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// UpdateStatus applies one atomic transition. It returns false without error when
	// the job exists but its current status does not allow the transition.
	UpdateStatus(ctx context.Context, req *model.UpdateStatusRequest) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Job, error)
	Stats(ctx context.Context) (*model.JobStats, error)
}

// Delivery is one message handed out by a WorkQueue. It stays in flight until acknowledged.
type Delivery struct {
	Task model.ReviewTask
	// Receipt identifies the in-flight copy for Ack.
	Receipt string
}

// WorkQueue is the durable, at-least-once boundary between the dispatcher and workers.
type WorkQueue interface {
	Enqueue(ctx context.Context, task *model.ReviewTask) error
	// Dequeue blocks up to wait for the next task. It returns model.ErrQueueEmpty when none arrived.
	Dequeue(ctx context.Context, wait time.Duration) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
}

// SourceProvider reads pull request data from a source-control host.
type SourceProvider interface {
	ListChangedFiles(ctx context.Context, ref model.RepositoryRef) ([]model.ChangedFile, error)
	GetFileContent(ctx context.Context, ref model.RepositoryRef, path, revision string) (string, error)
	GetMetadata(ctx context.Context, ref model.RepositoryRef) (*model.PullRequestMetadata, error)
}

// SourceProviderFactory returns a SourceProvider authenticated with the given token.
// An empty token selects the provider's configured default credentials.
type SourceProviderFactory interface {
	ForToken(token string) SourceProvider
}

// AnalysisProvider turns one file's content into a validated list of issues.
type AnalysisProvider interface {
	Analyze(ctx context.Context, fileName, content string) (*model.FileAnalysis, error)
}

// CredentialSealer protects provider credentials while they sit on the work queue.
type CredentialSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
