package model

import "fmt"

// RepositoryRef identifies a hosted repository and the change under review.
type RepositoryRef struct {
	Host   string `json:"host"`
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// FullName returns the owner/name form of the repository.
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// URL returns the canonical https form of the repository reference.
func (r RepositoryRef) URL() string {
	return "https://" + r.Host + "/" + r.FullName()
}

// String implements fmt.Stringer.
func (r RepositoryRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Host, r.FullName(), r.Number)
}

// ChangeRevision returns the ref that always points at the head of the change.
func (r RepositoryRef) ChangeRevision() string {
	return fmt.Sprintf("refs/pull/%d/head", r.Number)
}

// ChangedFileStatus mirrors the per-file status reported for a change.
type ChangedFileStatus string

const (
	// ChangedFileAdded marks a file created by the change.
	ChangedFileAdded ChangedFileStatus = "added"
	// ChangedFileModified marks a file edited by the change.
	ChangedFileModified ChangedFileStatus = "modified"
	// ChangedFileRemoved marks a file deleted by the change.
	ChangedFileRemoved ChangedFileStatus = "removed"
	// ChangedFileRenamed marks a file moved by the change.
	ChangedFileRenamed ChangedFileStatus = "renamed"
)

// ChangedFile is one entry of a change's file list.
type ChangedFile struct {
	FileName  string            `json:"file_name"`
	Status    ChangedFileStatus `json:"status,omitempty"`
	Additions int               `json:"additions,omitempty"`
	Deletions int               `json:"deletions,omitempty"`
}

// FileAnalysis is the validated output of analyzing one file.
type FileAnalysis struct {
	Issues []Issue `json:"issues"`
}
