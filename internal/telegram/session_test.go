package telegram

import "testing"

func TestSessionBackFloorsAtRoot(t *testing.T) {
	s := &session{stack: []screen{screenMain}}
	s.push(screenKnowledge)
	s.push(screenSearch)

	if got := s.back(); got != screenKnowledge {
		t.Fatalf("back() = %v, want %v", got, screenKnowledge)
	}
	if got := s.back(); got != screenMain {
		t.Fatalf("back() = %v, want %v", got, screenMain)
	}
	// Popping the root is a no-op.
	if got := s.back(); got != screenMain {
		t.Fatalf("back() at root = %v, want %v", got, screenMain)
	}
}

func TestSessionBackClearsPendingInput(t *testing.T) {
	s := &session{stack: []screen{screenMain, screenSearch}, state: stateSearch}
	s.back()
	if s.state != stateNone {
		t.Fatalf("state after back = %v, want %v", s.state, stateNone)
	}
}

func TestSessionHomeResetsEverything(t *testing.T) {
	s := &session{
		stack:           []screen{screenMain, screenKnowledge, screenSearch},
		state:           stateArticleTitle,
		flow:            &addFlow{title: "half-entered"},
		reminderMinutes: 15,
	}
	s.home()

	if len(s.stack) != 1 || s.top() != screenMain {
		t.Fatalf("stack after home = %v", s.stack)
	}
	if s.state != stateNone || s.flow != nil || s.reminderMinutes != 0 {
		t.Fatalf("input not cleared: state=%v flow=%v minutes=%d", s.state, s.flow, s.reminderMinutes)
	}
}

func TestSessionsGetCreatesRootedSession(t *testing.T) {
	ss := newSessions()
	s := ss.get(42)
	if s.top() != screenMain {
		t.Fatalf("new session top = %v, want %v", s.top(), screenMain)
	}
	if ss.get(42) != s {
		t.Fatal("get returned a different session for the same user")
	}
}
