package entity

import "github.com/google/uuid"

// FrameExtractionMessage is the inbound message from the frames.extract
// queue. Interval travels as the raw string the user typed; it is resolved
// with ResolveInterval when the job record is created.
type FrameExtractionMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	UserID    string    `json:"user_id"`
	VideoKey  string    `json:"video_key"`
	Interval  string    `json:"interval_seconds"`
	FileSize  int64     `json:"file_size"`
	UserEmail string    `json:"user_email"`
}

// ExtractionStatusMessage is the outbound message published to the
// frames.status queue.
type ExtractionStatusMessage struct {
	JobID           uuid.UUID `json:"job_id"`
	UserID          string    `json:"user_id"`
	Status          JobStatus `json:"status"`
	VideoKey        string    `json:"video_key"`
	ArchiveKey      string    `json:"archive_key,omitempty"`
	IntervalSeconds int       `json:"interval_seconds"`
	FrameCount      int       `json:"frame_count,omitempty"`
	Duration        float64   `json:"duration_seconds,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	Attempt         int       `json:"attempt"`
	MaxAttempts     int       `json:"max_attempts"`
}
