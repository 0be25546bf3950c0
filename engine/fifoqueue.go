package engine

import (
	"fmt"
	mathbits "math/bits"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a concurrency safe FIFO queue with a maximum capacity and a length observer.
// Elements pushed beyond the capacity are dropped. Each time the length changes, the
// QueueLengthObserver is called with the new length.
//
// The QueueLengthObserver must be non-blocking.
type FifoQueue[T any] struct {
	mu             sync.RWMutex
	queue          deque.Deque
	maxCapacity    int
	lengthObserver QueueLengthObserver
}

// ConstructorOption is an optional argument of NewFifoQueue.
type ConstructorOption[T any] func(*FifoQueue[T]) error

// QueueLengthObserver is notified of the queue length after every change.
type QueueLengthObserver func(int)

// WithCapacity sets the maximum number of elements the queue holds. By default the capacity is
// the largest int.
func WithCapacity[T any](capacity int) ConstructorOption[T] {
	return func(queue *FifoQueue[T]) error {
		if capacity < 1 {
			return fmt.Errorf("capacity for fifo queue must be positive, got %d", capacity)
		}
		queue.maxCapacity = capacity
		return nil
	}
}

// WithLengthObserver sets the callback invoked with the new length after every push and pop.
func WithLengthObserver[T any](callback QueueLengthObserver) ConstructorOption[T] {
	return func(queue *FifoQueue[T]) error {
		if callback == nil {
			return fmt.Errorf("nil is not a valid QueueLengthObserver")
		}
		queue.lengthObserver = callback
		return nil
	}
}

func NewFifoQueue[T any](options ...ConstructorOption[T]) (*FifoQueue[T], error) {
	maxInt := 1<<(mathbits.UintSize-1) - 1

	queue := &FifoQueue[T]{
		maxCapacity:    maxInt,
		lengthObserver: func(int) {},
	}
	for _, opt := range options {
		err := opt(queue)
		if err != nil {
			return nil, fmt.Errorf("failed to apply constructor option to fifo queue: %w", err)
		}
	}
	return queue, nil
}

// Push appends element to the tail of the queue.
// Returns false if the queue is full, in which case element is dropped.
func (q *FifoQueue[T]) Push(element T) bool {
	length, pushed := q.push(element)
	if pushed {
		q.lengthObserver(length)
	}
	return pushed
}

func (q *FifoQueue[T]) push(element T) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	length := q.queue.Len()
	if length < q.maxCapacity {
		q.queue.PushBack(element)
		return length + 1, true
	}
	return length, false
}

// Pop removes and returns the head of the queue.
// Returns false if the queue is empty.
func (q *FifoQueue[T]) Pop() (T, bool) {
	element, length, ok := q.pop()
	if !ok {
		var zero T
		return zero, false
	}

	q.lengthObserver(length)
	return element, true
}

func (q *FifoQueue[T]) pop() (T, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	head, ok := q.queue.PopFront()
	if !ok {
		return zero, 0, false
	}
	return head.(T), q.queue.Len(), true
}

// Len returns the current length of the queue.
func (q *FifoQueue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.queue.Len()
}
