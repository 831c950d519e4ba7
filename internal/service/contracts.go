package service

import (
	"github.com/jim941206/110311/internal/domain/entities"
)

// QuizGenerator builds the question set for a new play-through.
type QuizGenerator interface {
	GenerateQuiz(n int) entities.Quiz
}

// Listener receives quiz events so the presentation layer can react to them.
// Positions are whatever the caller passed to SubmitAnswer.
type Listener interface {
	OnQuestion(index int, q entities.Question)
	OnCorrect(at entities.Point)
	OnIncorrect(at entities.Point)
	OnTimeout()
	OnQuizEnded(finalScore, total int)
}

// NopListener ignores every event. Embed it to implement only some callbacks.
type NopListener struct{}

func (NopListener) OnQuestion(int, entities.Question) {}
func (NopListener) OnCorrect(entities.Point)          {}
func (NopListener) OnIncorrect(entities.Point)        {}
func (NopListener) OnTimeout()                        {}
func (NopListener) OnQuizEnded(int, int)              {}
