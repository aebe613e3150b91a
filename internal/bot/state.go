package bot

import (
	"sync"

	"github.com/example/verbadiem/internal/ai"
	"github.com/example/verbadiem/internal/audio"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/pkg/models"
)

// Text input the chat is waiting for
const (
	awaitNothing        = ""
	awaitCollectionName = "collection_name"
)

// chatState is the transient per-chat state that is not part of the
// learner's progress. mu is never held across network calls.
type chatState struct {
	mu sync.Mutex

	word     *models.DailyWord
	offline  bool
	quiz     *quiz.Quiz
	review   *quiz.ReviewRound
	practice ai.Practice
	awaiting string
	// collectWord is the word whose collections are being edited
	collectWord string
	pronouncer  *audio.Pronouncer
}

// resetLesson forgets everything tied to the current screen
func (s *chatState) resetLesson() {
	s.word = nil
	s.offline = false
	s.quiz = nil
	s.review = nil
	s.practice = nil
	s.awaiting = awaitNothing
	s.collectWord = ""
}

func (s *chatState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLesson()
}

func (s *chatState) setCollectWord(wordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectWord = wordID
	s.awaiting = awaitNothing
}

func (s *chatState) collectedWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectWord
}

func (b *Bot) chat(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.chats[chatID]
	if !ok {
		state = &chatState{}
		if b.generator != nil {
			state.pronouncer = audio.NewPronouncer(b.generator)
		}
		b.chats[chatID] = state
	}
	return state
}

// forgetChat drops the transient state of a chat and any pending ad without
// running its callback
func (b *Bot) forgetChat(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.chats, chatID)
	delete(b.ads, chatID)
}
