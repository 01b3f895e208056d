package db

import (
	"context"
	"database/sql"
)

// TxFn runs inside a transaction owned by the Writer.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Writer funnels every buffer mutation through one goroutine, one
// transaction at a time. The tracker has a single logical producer, so a
// small queue and strict serialization are all the write discipline SQLite
// needs.
type Writer struct {
	conn *sql.DB
	jobs chan txJob
	done chan struct{}
}

type txJob struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

func NewWriter(conn *sql.DB) *Writer {
	w := &Writer{
		conn: conn,
		jobs: make(chan txJob, 16),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Close stops accepting jobs, finishes those already queued, and waits for
// the goroutine to exit.
func (w *Writer) Close() {
	close(w.jobs)
	<-w.done
}

// Do runs fn in its own transaction, committing on nil and rolling back on
// error. The caller's context bounds both the wait for a queue slot and the
// wait for the result; an abandoned job still runs to completion, its result
// discarded into the buffered channel.
func (w *Writer) Do(ctx context.Context, fn TxFn) error {
	j := txJob{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for j := range w.jobs {
		j.result <- w.apply(j)
	}
}

func (w *Writer) apply(j txJob) error {
	tx, err := w.conn.BeginTx(j.ctx, nil)
	if err != nil {
		return err
	}
	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
