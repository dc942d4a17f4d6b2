// Package store persists extraction jobs in an embedded Badger database so
// the server survives restarts without losing submitted work or results.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/docugraph/docugraph/pkg/types"
)

// ErrJobNotFound is returned when a job identifier does not exist.
var ErrJobNotFound = errors.New("extraction job not found")

// JobStatus is the lifecycle state of an extraction job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Job is a persisted extraction job.
type Job struct {
	ID           string                  `json:"id"`
	Status       JobStatus               `json:"status"`
	DocumentName string                  `json:"document_name"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	Error        string                  `json:"error,omitempty"`
	Result       *types.ExtractionResult `json:"result,omitempty"`
}

// JobStore is a Badger-backed job repository.
type JobStore struct {
	db *badger.DB
}

// Open opens a persistent store at the given directory.
func Open(path string) (*JobStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}
	return &JobStore{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process lifetime,
// used by tests and one-shot CLI runs.
func OpenInMemory() (*JobStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory job store: %w", err)
	}
	return &JobStore{db: db}, nil
}

func jobKey(id string) []byte {
	return []byte("job:" + id)
}

// Create persists a new pending job and returns it.
func (s *JobStore) Create(documentName string) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:           uuid.New().String(),
		Status:       StatusPending,
		DocumentName: documentName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.put(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get returns a job by identifier.
func (s *JobStore) Get(id string) (*Job, error) {
	var job Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(jobKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrJobNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// SetStatus transitions a job to the given status.
func (s *JobStore) SetStatus(id string, status JobStatus) (*Job, error) {
	return s.update(id, func(job *Job) {
		job.Status = status
	})
}

// SetResult stores a completed job's result.
func (s *JobStore) SetResult(id string, result *types.ExtractionResult) (*Job, error) {
	return s.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.Result = result
	})
}

// SetError marks a job as failed with the given message.
func (s *JobStore) SetError(id string, message string) (*Job, error) {
	return s.update(id, func(job *Job) {
		job.Status = StatusError
		job.Error = message
	})
}

// List returns all jobs, newest first.
func (s *JobStore) List() ([]*Job, error) {
	var jobs []*Job
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("job:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var job Job
				if err := json.Unmarshal(val, &job); err != nil {
					return err
				}
				jobs = append(jobs, &job)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// badger iterates in key order; sort by creation time instead
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// Delete removes a job.
func (s *JobStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(jobKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrJobNotFound, id)
			}
			return err
		}
		return txn.Delete(jobKey(id))
	})
}

// Close releases the underlying database.
func (s *JobStore) Close() error {
	return s.db.Close()
}

func (s *JobStore) put(job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job %s: %w", job.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(jobKey(job.ID), data)
	})
}

func (s *JobStore) update(id string, mutate func(*Job)) (*Job, error) {
	job, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	mutate(job)
	job.UpdatedAt = time.Now().UTC()
	if err := s.put(job); err != nil {
		return nil, err
	}
	return job, nil
}
