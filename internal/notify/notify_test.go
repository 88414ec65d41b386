package notify

import "testing"

func TestDiscard(t *testing.T) {
	id, err := Discard.Notify(Notification{Summary: "x"})
	if id != 0 || err != nil {
		t.Errorf("Discard.Notify() = %d, %v", id, err)
	}
	if err := Discard.Close(7); err != nil {
		t.Errorf("Discard.Close() = %v", err)
	}
}
