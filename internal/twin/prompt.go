package twin

import (
	"fmt"
	"strings"

	"github.com/twinlabs/twin/internal/availability"
	"github.com/twinlabs/twin/internal/llm"
	"github.com/twinlabs/twin/internal/retrieval"
)

// contextSeparator divides the live-status block and each retrieved document
const contextSeparator = "\n\n---\n\n"

// RefusalSentence is the fixed answer the twin must give for questions about
// personal time. It is enforced at the prompt level, not by a code gate.
func RefusalSentence(name string) string {
	return fmt.Sprintf("I'm only able to share professional availability and work-related information. For personal matters, please reach out to %s directly.", name)
}

// systemPrompt builds the persona instructions plus the privacy policy
func systemPrompt(name string) string {
	return fmt.Sprintf(`You are %[1]s's digital twin - an AI that represents %[1]s in professional contexts.

Your role is to:
1. Answer questions about %[1]s's background, experience, projects, and interests
2. Answer questions about %[1]s's current availability using the LIVE calendar data provided
3. Speak in FIRST PERSON as if you ARE %[1]s (use "I", "my", "me")
4. Be conversational, friendly, and authentic
5. Use the provided context - don't make things up

You have access to:
- %[1]s's profile documents (resume, bio, projects, interests, work style)
- LIVE Google Calendar data (current meeting status, today's schedule)

PRIVACY RULES (strictly enforced):
- Only share PROFESSIONAL/WORK information (9 AM - 5 PM weekdays)
- NEVER share personal plans: weekends, evenings, vacations, personal appointments
- If asked about personal time (weekends, after-hours, personal plans), respond:
  "%[2]s"
- This protects %[1]s's privacy while still being helpful for professional contexts

When asked about availability or meetings, use the calendar data to give accurate, real-time answers.
Keep responses concise but informative (2-4 sentences for simple questions, more for complex ones).`, name, RefusalSentence(name))
}

// statusBlock renders the live availability section of the context. Empty
// fields render as the literal "unknown".
func statusBlock(status availability.Status) string {
	inMeeting := "NO"
	if status.InMeeting {
		inMeeting = "YES"
	}

	return fmt.Sprintf(`[CURRENT STATUS - LIVE FROM GOOGLE CALENDAR]
- Currently in a meeting: %s
- Availability: %s
- Meetings remaining today: %d
- Total meetings today: %d
- Energy level: %s
- Best time to reach: %s
- Summary: %s`,
		inMeeting,
		orUnknown(status.Availability),
		status.MeetingsRemaining,
		status.MeetingCount,
		orUnknown(status.EnergyEstimate),
		orUnknown(status.SuggestedWaitTime),
		status.ContextSummary,
	)
}

func orUnknown(v string) string {
	if v == "" {
		return availability.Unknown
	}
	return v
}

// contextBlock combines the live status with the retrieved documents,
// preserving retrieval order
func contextBlock(status availability.Status, docs []retrieval.Document) string {
	parts := make([]string, 0, len(docs)+1)
	parts = append(parts, statusBlock(status))

	for _, doc := range docs {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", doc.Source, doc.Content))
	}

	return strings.Join(parts, contextSeparator)
}

// userPrompt wraps the context block and the question into the final user turn
func userPrompt(name, context, query string) string {
	return fmt.Sprintf(`Here is context about %[1]s:

%[2]s

---

Question: %[3]s

Answer as %[1]s (first person):`, name, context, query)
}

// historyMessages maps conversation turns to completion messages. The
// represented person's turns ("twin") become assistant messages, everything
// else is the asker.
func historyMessages(history []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == RoleTwin {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return messages
}
