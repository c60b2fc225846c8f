package ui

import (
	"errors"
	"strconv"
	"strings"
)

const (
	CallbackPrefix     = "w:"
	MaxCallbackDataLen = 64
)

type Kind string

const (
	KindAnswer Kind = "a"
	KindNext   Kind = "n"
)

// Action is a decoded inline button press.
type Action struct {
	Kind    Kind
	WordID  uint
	Correct bool
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidValue        = errors.New("invalid callback value")
	errCallbackDataTooLong = errors.New("callback data too long")
)

// BuildAnswerCallback encodes an answer as w:a:<id>:<1|0>.
func BuildAnswerCallback(wordID uint, correct bool) (string, error) {
	if wordID == 0 {
		return "", errInvalidValue
	}
	outcome := "0"
	if correct {
		outcome = "1"
	}
	data := CallbackPrefix + string(KindAnswer) + ":" + strconv.FormatUint(uint64(wordID), 10) + ":" + outcome
	return validateCallbackData(data)
}

func BuildNextCallback() (string, error) {
	return validateCallbackData(CallbackPrefix + string(KindNext))
}

func ParseCallbackData(data string) (Action, error) {
	if data == "" {
		return Action{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, CallbackPrefix) {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(data, ":")
	switch Kind(parts[1]) {
	case KindNext:
		if len(parts) != 2 {
			return Action{}, errInvalidAction
		}
		return Action{Kind: KindNext}, nil
	case KindAnswer:
		if len(parts) != 4 {
			return Action{}, errInvalidAction
		}
		return parseAnswerAction(parts[2], parts[3])
	default:
		return Action{}, errInvalidAction
	}
}

func parseAnswerAction(idPart, outcomePart string) (Action, error) {
	if !isASCIIUnsignedInt(idPart) {
		return Action{}, errInvalidValue
	}
	id, err := strconv.ParseUint(idPart, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return Action{}, errInvalidValue
	}

	var correct bool
	switch outcomePart {
	case "1":
		correct = true
	case "0":
	default:
		return Action{}, errInvalidValue
	}
	return Action{Kind: KindAnswer, WordID: uint(id), Correct: correct}, nil
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

func isASCIIUnsignedInt(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
