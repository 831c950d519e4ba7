package telegram

import (
	"errors"
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz   = "quiz"
	actionAnswer = "ans"
)

// Quiz sub-actions.
const (
	quizStart = "start"
	quizStop  = "stop"
)

// sessionTagLength is the number of session ID characters carried by answer buttons.
const sessionTagLength = 12

var errMalformedCallback = errors.New("malformed callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// answerParams extracts the session tag, epoch and choice of an answer callback.
func (cd callbackData) answerParams() (session string, epoch uint64, choice int, err error) {
	if cd.Action != actionAnswer || len(cd.Params) != 3 || cd.Params[0] == "" {
		return "", 0, 0, errMalformedCallback
	}

	epoch, err = strconv.ParseUint(cd.Params[1], 10, 64)
	if err != nil {
		return "", 0, 0, errMalformedCallback
	}

	choice, err = strconv.Atoi(cd.Params[2])
	if err != nil {
		return "", 0, 0, errMalformedCallback
	}

	return cd.Params[0], epoch, choice, nil
}

// sessionTag shortens a session ID to fit Telegram's 64-byte callback data limit.
func sessionTag(sessionID string) string {
	tag := strings.ReplaceAll(sessionID, "-", "")
	if len(tag) > sessionTagLength {
		tag = tag[:sessionTagLength]
	}
	return tag
}

// buildAnswerCallback builds callback data for answering the question shown
// under epoch of the play-through identified by sessionID.
func buildAnswerCallback(sessionID string, epoch uint64, choice int) string {
	return callbackData{
		Action: actionAnswer,
		Params: []string{
			sessionTag(sessionID),
			strconv.FormatUint(epoch, 10),
			strconv.Itoa(choice),
		},
	}.encode()
}

// buildQuizStartCallback builds callback data for starting a quiz.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

// buildQuizStopCallback builds callback data for abandoning a quiz.
func buildQuizStopCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStop},
	}.encode()
}
