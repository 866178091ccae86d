package workerproc

import (
	"context"
	"errors"
	"testing"

	"github.com/spergel/translation-stuff-sub001/internal/queue"
)

type fakeProcessor struct {
	err error
	got string
}

func (f *fakeProcessor) Process(ctx context.Context, translationID string) error {
	_ = ctx
	f.got = translationID
	return f.err
}

func encoded(t *testing.T, msg queue.Message) string {
	t.Helper()
	raw, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(raw)
}

func TestParseMessage(t *testing.T) {
	body := encoded(t, queue.Message{TranslationID: "tr-1", RequestID: "req-1", Version: 1})
	msg, meta, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.TranslationID != "tr-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageBadJSON(t *testing.T) {
	_, _, err := ParseMessage("{oops")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestParseMessageMissingID(t *testing.T) {
	body := encoded(t, queue.Message{RequestID: "req-1", Version: 1})
	_, _, err := ParseMessage(body)
	var missing ErrMissingTranslationID
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingTranslationID, got %v", err)
	}
	if missing.RequestID != "req-1" {
		t.Fatalf("expected request id carried, got %q", missing.RequestID)
	}
}

func TestHandleMessageProcesses(t *testing.T) {
	proc := &fakeProcessor{}
	body := encoded(t, queue.Message{TranslationID: "tr-1", RequestID: "req-1", Version: 1})

	if err := HandleMessage(context.Background(), proc, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proc.got != "tr-1" {
		t.Fatalf("expected tr-1 processed, got %q", proc.got)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("boom")}
	body := encoded(t, queue.Message{TranslationID: "tr-1", RequestID: "req-1", Version: 1})

	err := HandleMessage(context.Background(), proc, body)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.TranslationID != "tr-1" || procErr.RequestID != "req-1" {
		t.Fatalf("unexpected wrap: %+v", procErr)
	}
}

func TestHandleMessageUsesParsedContext(t *testing.T) {
	proc := &fakeProcessor{}
	msg := queue.Message{TranslationID: "tr-ctx", RequestID: "req-ctx", Version: 1}
	ctx := WithParsedMessage(context.Background(), msg)

	// Body deliberately differs from the parsed message; the parsed one wins.
	if err := HandleMessage(ctx, proc, "{}"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if proc.got != "tr-ctx" {
		t.Fatalf("expected parsed message used, got %q", proc.got)
	}
}

func TestHandleMessageNilProcessor(t *testing.T) {
	body := encoded(t, queue.Message{TranslationID: "tr-1"})
	if err := HandleMessage(context.Background(), nil, body); err == nil {
		t.Fatalf("expected error without processor")
	}
}

func TestComputeMetaEmpty(t *testing.T) {
	meta := ComputeMeta("")
	if meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}
