package mcp

// Instructions is sent to the client at initialization.
const Instructions = `This server exposes a single tool: ai_organiser_save.

GOAL:
- Save assistant responses into the user's AI Organiser account as notes.

WHEN TO CALL:
- Only call ai_organiser_save when the user clearly asks to save something, e.g.:
  - "сохрани это"
  - "сохрани в «Здоровье»"
  - "сохрани в проект <name>"
  - "save this"
  - "save this to <name>"
- If the user did not mention saving, DO NOT call this tool.
- Always pass the user's latest message, unchanged, as raw_utterance. The server
  checks it and skips the save when it does not ask to save.

WHAT EXACTLY TO SAVE:
- body MUST be an exact copy of YOUR PREVIOUS ASSISTANT MESSAGE:
  - do NOT summarize, rephrase or translate it,
  - do NOT add comments such as "the user asked me to save...",
  - do NOT prepend or append anything.

PROJECT HANDLING:
- If the user just says "сохрани это" / "save this", omit project_name.
  The note goes to Inbox.
- If the user names a project, pass it as project_name exactly as written.
  Do not normalize it. The backend creates missing projects.

TURN ORDER:
- First answer the user's question normally, without calling the tool.
- Call the tool only in a follow-up user message that asks to save.
- Never call ai_organiser_save in the same turn where you generate the content.

RESULTS:
- Every result carries a hint. Follow it when telling the user what happened.
- If saving fails, say so briefly and remind the user the content is still in
  the conversation. Never claim that saving is forbidden in general.

SECURITY / PRIVACY:
- Never ask the user to paste or reveal their AI Organiser integration token.
- Credentials come from the connector configuration only.
- Do not echo tokens in messages.
`
