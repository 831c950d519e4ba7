package storage

import (
	"sync"
	"time"
)

// QuestionMessage points at the Telegram message that shows a question keyboard.
type QuestionMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// MessageStorage remembers the last question message per chat so its keyboard can be removed.
type MessageStorage struct {
	mu       sync.Mutex
	messages map[int64]QuestionMessage
}

func NewMessageStorage() *MessageStorage {
	return &MessageStorage{
		messages: make(map[int64]QuestionMessage),
	}
}

// Take returns and forgets the message for chatID.
func (s *MessageStorage) Take(chatID int64) (QuestionMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[chatID]
	delete(s.messages, chatID)
	return msg, ok
}

func (s *MessageStorage) UpsertAndGetPrev(chatID int64, messageID int, sentAt time.Time) (prev QuestionMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[chatID]

	s.messages[chatID] = QuestionMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    sentAt,
	}

	return prev, hadPrev
}
