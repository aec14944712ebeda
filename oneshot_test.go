package localsync_test

import (
	"errors"
	"testing"

	"github.com/b97tsk/localsync"
)

func TestOneshot(t *testing.T) {
	t.Run("SendRecv", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		tx, rx := localsync.NewOneshot[string]()

		var got string

		myExecutor.Spawn(rx.Recv(func(v string, err error) localsync.Task {
			if err != nil {
				t.Errorf("Recv: %v", err)
			}
			got = v
			return nil
		}))

		if got != "" {
			t.Fatal("Recv did not wait for a value.")
		}

		myExecutor.Spawn(localsync.Do(func() {
			if err := tx.Send("hello"); err != nil {
				t.Errorf("Send: %v", err)
			}
		}))

		if got != "hello" {
			t.Fatalf("got %q; want %q", got, "hello")
		}
		if _, err := rx.TryRecv(); err != localsync.ErrAlreadyTaken {
			t.Fatalf("TryRecv: got %v; want ErrAlreadyTaken", err)
		}
		if err := tx.Send("again"); err != localsync.ErrAlreadySent {
			t.Fatalf("Send: got %v; want ErrAlreadySent", err)
		}
	})
	t.Run("TryRecv", func(t *testing.T) {
		tx, rx := localsync.NewOneshot[int]()

		if _, err := rx.TryRecv(); err != localsync.ErrEmpty {
			t.Fatalf("TryRecv: got %v; want ErrEmpty", err)
		}
		if err := tx.Send(42); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if v, err := rx.TryRecv(); v != 42 || err != nil {
			t.Fatalf("TryRecv: got (%v, %v); want (42, nil)", v, err)
		}
	})
	t.Run("SenderGone", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		tx, rx := localsync.NewOneshot[int]()

		var got error

		myExecutor.Spawn(rx.Recv(func(_ int, err error) localsync.Task {
			got = err
			return nil
		}))

		myExecutor.Spawn(localsync.Do(tx.Close))

		if got != localsync.ErrSenderGone {
			t.Fatalf("Recv: got %v; want ErrSenderGone", got)
		}
		if err := tx.Send(1); err != localsync.ErrClosed {
			t.Fatalf("Send: got %v; want ErrClosed", err)
		}
	})
	t.Run("SendThenClose", func(t *testing.T) {
		tx, rx := localsync.NewOneshot[int]()

		if err := tx.Send(1); err != nil {
			t.Fatalf("Send: %v", err)
		}

		tx.Close()

		if v, err := rx.TryRecv(); v != 1 || err != nil {
			t.Fatalf("TryRecv: got (%v, %v); want (1, nil)", v, err)
		}
	})
	t.Run("ReceiverClosed", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		tx, rx := localsync.NewOneshot[int]()

		var closed bool

		myExecutor.Spawn(tx.Closed().Then(localsync.Do(func() { closed = true })))

		var got error

		myExecutor.Spawn(rx.Recv(func(_ int, err error) localsync.Task {
			got = err
			return nil
		}))

		myExecutor.Spawn(localsync.Do(rx.Close))

		if got != localsync.ErrClosed {
			t.Fatalf("Recv: got %v; want ErrClosed", got)
		}
		if !closed || !tx.IsClosed() {
			t.Fatal("Sender did not observe the receiver closing.")
		}

		err := tx.Send(1)
		if !errors.Is(err, localsync.ErrClosed) || !errors.Is(err, localsync.ErrAlreadySent) {
			t.Fatalf("Send: got %v; want an error matching ErrClosed and ErrAlreadySent", err)
		}
		if _, err := rx.TryRecv(); err != localsync.ErrClosed {
			t.Fatalf("TryRecv: got %v; want ErrClosed", err)
		}
	})
	t.Run("ClosedAfterTaken", func(t *testing.T) {
		var myExecutor localsync.Executor

		myExecutor.Autorun(myExecutor.Run)

		tx, rx := localsync.NewOneshot[int]()

		var closed bool

		myExecutor.Spawn(tx.Closed().Then(localsync.Do(func() { closed = true })))

		myExecutor.Spawn(localsync.Do(func() { _ = tx.Send(1) }))

		if closed {
			t.Fatal("Closed ended before the value was taken.")
		}

		myExecutor.Spawn(rx.Recv(nil))

		if !closed {
			t.Fatal("Closed did not end after the value was taken.")
		}
		if tx.IsClosed() {
			t.Fatal("IsClosed should report false; the receiver was not closed.")
		}
	})
	t.Run("Unused", func(t *testing.T) {
		tx, rx := localsync.NewOneshot[int]()

		rx.Close()
		rx.Close()
		tx.Close()
		tx.Close()

		if !tx.IsClosed() {
			t.Fatal("IsClosed should report true.")
		}
	})
}
