package eventlog

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"
)

func appendN(t *testing.T, l *Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := l.Append(context.Background(), Event{Action: ActionMint, Kind: "food", IDs: []string{fmt.Sprintf("id-%d", i)}}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestReadForwardPaged(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 5)

	page, err := l.Read(ReadOptions{Limit: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 1 || page[1].Seq != 2 {
		t.Fatalf("page1 = %+v", page)
	}
	page, _ = l.Read(ReadOptions{After: page[1].Seq, Limit: 10})
	if len(page) != 3 || page[0].Seq != 3 || page[0].IDs[0] != "id-2" {
		t.Fatalf("page2 = %+v", page)
	}
}

func TestReadReverse(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 4)

	page, err := l.Read(ReadOptions{Reverse: true, Limit: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 4 || page[1].Seq != 3 {
		t.Fatalf("reverse page = %+v", page)
	}
	page, _ = l.Read(ReadOptions{Reverse: true, After: 3})
	if len(page) != 2 || page[0].Seq != 2 || page[1].Seq != 1 {
		t.Fatalf("reverse after = %+v", page)
	}
}

func TestReadSkipsCorrupt(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 2)
	if err := l.db.Set(KeyEntry(2), []byte{0x01, 0xff}); err != nil {
		t.Fatalf("set: %v", err)
	}
	page, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(page) != 1 || page[0].Seq != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestReadSkipsOversizedHeaderLength(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 2)
	frame := binary.AppendUvarint(nil, 1<<63)
	frame = append(frame, 1, 2, 3, 4, 5)
	if err := l.db.Set(KeyEntry(1), frame); err != nil {
		t.Fatalf("set: %v", err)
	}
	page, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(page) != 1 || page[0].Seq != 2 {
		t.Fatalf("page = %+v", page)
	}

	n, err := l.TrimOlderThan(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("trim: %v", err)
	}
	if n != 1 {
		t.Fatalf("trimmed %d, want 1", n)
	}
}
