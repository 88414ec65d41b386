package action

import "testing"

type closed struct{}

func (closed) ActionType() string { return "test.closed" }

func TestCmd(t *testing.T) {
	msg, ok := Cmd("help", closed{})().(Msg)
	if !ok {
		t.Fatal("Cmd should produce a Msg")
	}
	if msg.Source != "help" {
		t.Errorf("Source = %q, want help", msg.Source)
	}
	if msg.Action.ActionType() != "test.closed" {
		t.Errorf("ActionType() = %q", msg.Action.ActionType())
	}
}
