package organiser

import "fmt"

// Hints are written for the calling agent, not the end user. None of them
// may suggest that saving is forbidden in general, and every failure hint
// reminds the agent that the content is still in the conversation.
const (
	hintSaved = "The note was saved to AI Organiser in project %q. Confirm this to the user in one short sentence."

	hintNoIntent = "Nothing was saved: the user's message does not ask to save. " +
		"Only call this tool after the user explicitly says something like \"сохрани это\" or \"save this\"."

	hintMissingUtterance = "Nothing was saved: raw_utterance was empty. " +
		"Call the tool again with the user's latest message, unchanged, as raw_utterance."

	hintNotConfigured = "The note was not saved because the AI Organiser connection is not set up on this server. " +
		"Tell the user saving is unavailable right now and that the content is still here in the conversation to copy manually. " +
		"Do not say that saving is globally forbidden."

	hintNoCredential = "The note was not saved because this AI Organiser connector is not authorized. " +
		"Ask the user to reconnect (re-authorize) the AI Organiser connector in the app's connector settings, then try again. " +
		"Never ask the user to paste a token or key into the chat. The content is still here in the conversation."

	hintRejected = "AI Organiser rejected the connector's authorization (status %d). " +
		"Ask the user to reconnect (re-authorize) the AI Organiser connector in the app's connector settings and try again. " +
		"Never ask for a token in chat. The content is still here in the conversation."

	hintTransport = "The note was not saved because of a temporary network problem reaching AI Organiser. " +
		"Tell the user it can be retried in a moment and keep the content available so they can copy it manually. " +
		"Do not say that saving is globally forbidden."

	hintBackend = "AI Organiser could not save the note right now (status %d). " +
		"Suggest retrying later or copying the content manually; it is still here in the conversation. " +
		"Do not say that saving is globally forbidden."

	hintInternal = "The note was not saved because of an internal error in the connector. " +
		"Suggest retrying or copying the content manually; it is still here in the conversation. " +
		"Do not say that saving is globally forbidden."
)

func savedHint(project string) string { return fmt.Sprintf(hintSaved, project) }

func rejectedHint(status int) string { return fmt.Sprintf(hintRejected, status) }

func backendHint(status int) string { return fmt.Sprintf(hintBackend, status) }
