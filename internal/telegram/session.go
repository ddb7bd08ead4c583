package telegram

import "sync"

// screen identifies an entry on the per-user navigation stack.
type screen int

const (
	screenMain screen = iota
	screenKnowledge
	screenSearch
	screenReminders
	screenFeedback
	screenLinks
	screenContacts
)

// inputState marks which free-form input the bot is waiting for.
type inputState int

const (
	stateNone inputState = iota

	// registration
	stateLanguage
	statePhone
	stateRole
	stateShop

	// user flows
	stateFeedback
	stateSearch
	stateReminderMinutes
	stateReminderText

	// admin article flows (shared field states, gated by articleFlow)
	stateArticleID
	stateArticleTitle
	stateArticleBody
	stateArticleTags
)

// articleFlow discriminates the admin sub-flow the shared article states
// belong to. Distinct variants per flow mean add and edit can never
// cross-trigger on a shared state name.
type articleFlow interface{ isArticleFlow() }

type addFlow struct {
	title string
	body  string
}

type editFlow struct {
	id    int64
	title *string // nil keeps the previous value
	body  *string
}

type deleteFlow struct{}

func (*addFlow) isArticleFlow()    {}
func (*editFlow) isArticleFlow()   {}
func (*deleteFlow) isArticleFlow() {}

// session is per-user volatile conversation state. It lives only in memory
// and resets on restart; registration progress survives anyway because the
// current stage is re-derived from the stored profile.
type session struct {
	stack           []screen
	state           inputState
	flow            articleFlow
	reminderMinutes int
}

// top returns the current screen without popping.
func (s *session) top() screen {
	return s.stack[len(s.stack)-1]
}

// push records a screen visit.
func (s *session) push(sc screen) {
	s.stack = append(s.stack, sc)
}

// back pops one level and returns the new top. Popping the root is a no-op
// that returns the root, so callers always re-render something.
func (s *session) back() screen {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	s.resetInput()
	return s.top()
}

// home resets the stack to a single Main entry and clears any pending input.
func (s *session) home() {
	s.stack = []screen{screenMain}
	s.resetInput()
}

// resetInput abandons any pending free-form input or admin flow.
func (s *session) resetInput() {
	s.state = stateNone
	s.flow = nil
	s.reminderMinutes = 0
}

// sessions holds one session per user.
type sessions struct {
	mu     sync.Mutex
	byUser map[int64]*session
}

func newSessions() *sessions {
	return &sessions{byUser: make(map[int64]*session)}
}

// get returns the user's session, creating one rooted at Main.
func (s *sessions) get(userID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byUser[userID]
	if !ok {
		sess = &session{stack: []screen{screenMain}}
		s.byUser[userID] = sess
	}
	return sess
}
