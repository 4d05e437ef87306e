package testutil

import (
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest
// objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			JobNumber: "CD-9001",
			Title:     "Test job",
			Priority:  model.JobPriorityMedium,
		},
	}
}

// WithJobNumber sets the job number.
func (b *JobRequestBuilder) WithJobNumber(n string) *JobRequestBuilder {
	b.req.JobNumber = n
	return b
}

// WithTitle sets the job title.
func (b *JobRequestBuilder) WithTitle(title string) *JobRequestBuilder {
	b.req.Title = title
	return b
}

// WithStatus sets the initial status.
func (b *JobRequestBuilder) WithStatus(status model.JobStatus) *JobRequestBuilder {
	b.req.Status = status
	return b
}

// WithPriority sets the job priority.
func (b *JobRequestBuilder) WithPriority(priority model.JobPriority) *JobRequestBuilder {
	b.req.Priority = priority
	return b
}

// WithDueDate sets the due date.
func (b *JobRequestBuilder) WithDueDate(due time.Time) *JobRequestBuilder {
	b.req.DueDate = &due
	return b
}

// WithClientID links the job to a client.
func (b *JobRequestBuilder) WithClientID(id string) *JobRequestBuilder {
	b.req.ClientID = &id
	return b
}

// Build returns the constructed request.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// ClientRequestBuilder provides a fluent interface for building
// CreateClientRequest objects for testing.
type ClientRequestBuilder struct {
	req *model.CreateClientRequest
}

// NewClientRequest creates a new ClientRequestBuilder with sensible defaults.
func NewClientRequest() *ClientRequestBuilder {
	return &ClientRequestBuilder{
		req: &model.CreateClientRequest{
			Name:    "Test Client",
			Email:   "client@example.com",
			Company: "Test Company",
		},
	}
}

// WithName sets the contact name.
func (b *ClientRequestBuilder) WithName(name string) *ClientRequestBuilder {
	b.req.Name = name
	return b
}

// WithEmail sets the contact email.
func (b *ClientRequestBuilder) WithEmail(email string) *ClientRequestBuilder {
	b.req.Email = email
	return b
}

// WithCompany sets the company name.
func (b *ClientRequestBuilder) WithCompany(company string) *ClientRequestBuilder {
	b.req.Company = company
	return b
}

// Build returns the constructed request.
func (b *ClientRequestBuilder) Build() *model.CreateClientRequest {
	return b.req
}
