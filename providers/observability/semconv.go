package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider ("openai", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4", "gemini-pro")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMStreaming marks a streaming request
	AttrLLMStreaming = "llm.streaming"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request/Response Attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrResponseContent is the response content from LLM
	AttrResponseContent = "response.content"

	// AttrResponseLength is the length of the accumulated response text
	AttrResponseLength = "response.length"
)

// --- Stream Attributes ---

const (
	// AttrStreamFraming is the wire framing in use ("lines", "objects")
	AttrStreamFraming = "stream.framing"

	// AttrStreamFramePreview is a truncated preview of a rejected frame
	AttrStreamFramePreview = "stream.frame.preview"

	// AttrStreamDeltas is the number of deltas applied during an exchange
	AttrStreamDeltas = "stream.deltas"

	// AttrStreamTimeToFirstByte is the latency until response headers arrived
	AttrStreamTimeToFirstByte = "stream.ttfb"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"

	// AttrHTTPDuration is the time until response headers arrived
	AttrHTTPDuration = "http.request.duration"
)

// --- Memory Attributes ---

const (
	// AttrMemoryMessageRole is the role of the message being stored
	AttrMemoryMessageRole = "memory.message.role"

	// AttrMemoryMessageLength is the length of the message content
	AttrMemoryMessageLength = "memory.message.length"

	// AttrMemoryTotalMessages is the total number of messages in memory
	AttrMemoryTotalMessages = "memory.total_messages"
)

// --- Session Attributes ---

const (
	// AttrSessionExchangeID identifies one request/response exchange
	AttrSessionExchangeID = "session.exchange.id"

	// AttrSessionState is the state the session moved into
	AttrSessionState = "session.state"

	// AttrCatalogModelsCount is the number of models a discovery call returned
	AttrCatalogModelsCount = "catalog.models_count"

	// AttrCatalogFallback marks a model list replaced by the defaults
	AttrCatalogFallback = "catalog.fallback"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"

	// AttrStatusDescription is the status description
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanSessionExchange is the span name for one submit-to-commit exchange
	SpanSessionExchange = "session.exchange"

	// SpanCatalogList is the span name for model discovery
	SpanCatalogList = "catalog.list"
)

// --- Event Names ---

const (
	// EventLLMRequestStart marks the start of an LLM request
	EventLLMRequestStart = "llm.request.start"

	// EventStreamStarted marks the arrival of response headers
	EventStreamStarted = "stream.started"

	// EventFrameRejected marks a malformed frame that was skipped
	EventFrameRejected = "stream.frame.rejected"

	// EventMemoryAppend marks when a message is appended to memory
	EventMemoryAppend = "memory.append"

	// EventMemoryClear marks when memory is cleared
	EventMemoryClear = "memory.clear"
)

// --- Metric Names ---

const (
	// MetricExchangeCommitted counts exchanges that committed an assistant turn
	MetricExchangeCommitted = "duochat.exchange.committed"

	// MetricExchangeFailed counts exchanges that ended in the failed state
	MetricExchangeFailed = "duochat.exchange.failed"

	// MetricExchangeAbandoned counts exchanges cancelled before finalizing
	MetricExchangeAbandoned = "duochat.exchange.abandoned"

	// MetricFramesRejected counts malformed frames swallowed mid-stream
	MetricFramesRejected = "duochat.stream.frames.rejected"

	// MetricTimeToFirstByte is the histogram of header latency in milliseconds
	MetricTimeToFirstByte = "duochat.stream.ttfb_ms"
)
