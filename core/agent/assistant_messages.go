package agent

// User-facing replies. Upstream detail never reaches these strings.
const (
	MsgNotConnected        = "Google Calendar not connected."
	MsgClarifyIntent       = "I couldn't tell whether you want to check your calendar or add something to it. Could you rephrase your request?"
	MsgClarifyMeeting      = "I couldn't work out the meeting details. Please include a title and when the meeting should start."
	MsgCalendarUnavailable = "I couldn't reach your calendar right now. Please try again in a moment."
	MsgUpstreamFailure     = "I ran into a problem while handling your request. Please try again later."
	MsgGeneralFallback     = "I'm sorry, I couldn't come up with a response."
)
