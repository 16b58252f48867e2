package models

const (
	ContextSeparator = "\n\n---\n\n"
	PreviewLimit     = 500
)

var (
	RAGPromptTemplate = `You are a helpful assistant that answers questions about files the user attached to the conversation.

Use the following context retrieved from the attached files to answer the question. Reference the specific files the data came from. Do not invent data that is not present in the context.

Context:
%s

Question: %s
`

	FallbackPromptTemplate = `You are a helpful assistant that answers questions about files the user attached to the conversation.

Semantic retrieval found nothing, so the following is a keyword analysis of the attached files. Answer the question using only this analysis. If it states that no data was found, say so honestly and suggest what the user could try instead.

%s

Question: %s
`
)
