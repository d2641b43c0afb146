package clipboard

import (
	"errors"
	"testing"

	"sapflow/cli/internal/errs"
)

type recorder struct {
	text string
	err  error
}

func (r *recorder) Write(text string) error {
	r.text = text
	return r.err
}

func TestInject(t *testing.T) {
	r := &recorder{}
	if err := Inject(r, []string{"12", "900123"}); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if r.text != "12\r\n900123\r\n" {
		t.Errorf("clipboard text = %q", r.text)
	}
}

func TestInjectSingleValue(t *testing.T) {
	r := &recorder{}
	if err := Inject(r, []string{"42"}); err != nil {
		t.Fatalf("Inject: %v", err)
	}
	if r.text != "42\r\n" {
		t.Errorf("clipboard text = %q", r.text)
	}
}

func TestInjectEmpty(t *testing.T) {
	r := &recorder{}
	err := Inject(r, nil)
	if errs.KindOf(err) != errs.InvalidCommand {
		t.Errorf("kind = %q, want %q", errs.KindOf(err), errs.InvalidCommand)
	}
}

func TestInjectWriteFailure(t *testing.T) {
	r := &recorder{err: errors.New("no display")}
	err := Inject(r, []string{"1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if errs.KindOf(err) != errs.ControlNotFound {
		t.Errorf("kind = %q, want %q", errs.KindOf(err), errs.ControlNotFound)
	}
}
