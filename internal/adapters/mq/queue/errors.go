package queue

import "errors"

// ErrQueueClosed indicates an enqueue after Close.
var ErrQueueClosed = errors.New("queue is closed")
