package actionable

import (
	"fmt"

	"amd-service-go/internal/types"
)

type Action string

const (
	ConnectAgent   Action = "connect_agent"
	LeaveVoicemail Action = "leave_voicemail"
	RetryOrHangup  Action = "retry_or_hangup"
)

// lowConfidence is the point below which a definite result is only acted on
// with a caveat.
const lowConfidence = 0.70

type ActionCard struct {
	Action  Action `json:"action"`
	Insight string `json:"insight"`
	Impact  string `json:"impact"`
}

// Decide picks the call-flow branch for an analysed call.
func Decide(r types.CallResult) ActionCard {
	if r.Failed() {
		return ActionCard{
			Action:  RetryOrHangup,
			Insight: fmt.Sprintf("Analysis failed (%s)", r.ErrorKind),
			Impact:  "Recording could not be classified; retry the call later",
		}
	}

	switch r.Result {
	case "human":
		card := ActionCard{
			Action:  ConnectAgent,
			Insight: fmt.Sprintf("Human pickup (%.0f%% confidence)", r.Confidence*100),
			Impact:  "Bridge to an available agent",
		}
		if r.Confidence < lowConfidence {
			card.Impact = "Bridge to an agent; greeting may be a short voicemail"
		}
		return card
	case "machine":
		card := ActionCard{
			Action:  LeaveVoicemail,
			Insight: fmt.Sprintf("Answering machine (%.0f%% confidence)", r.Confidence*100),
			Impact:  "Play the voicemail drop after the beep",
		}
		if r.Confidence < lowConfidence {
			card.Impact = "Play the voicemail drop; flag for review"
		}
		return card
	default:
		return ActionCard{
			Action:  RetryOrHangup,
			Insight: "No clear answer detected",
			Impact:  "Hang up and schedule a retry",
		}
	}
}
