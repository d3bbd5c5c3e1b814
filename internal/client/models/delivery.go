// Package models defines the records kept in the local delivery journal.
package models

import (
	"time"
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
)

// Delivery is one send, successful or not. Key and Nonce are the
// out-of-band decryption material and are only set for delivered rows.
type Delivery struct {
	ID          string
	FileName    string
	Status      DeliveryStatus
	Location    string
	Destination string
	MimeType    string
	Size        int64
	Digest      string
	Key         string
	Nonce       string
	Error       string
	CreatedAt   time.Time

	Attempts []Attempt
}

// Attempt is one upload try belonging to a delivery.
type Attempt struct {
	ID          string
	DeliveryID  string
	Destination string
	Index       int
	BytesSent   int64
	Duration    time.Duration
	Class       string
	Error       string
}
